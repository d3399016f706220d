package trafficlight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/nats-io/nats.go"
)

// Publisher delivers the combined per-group detail document to the
// pub/sub transport the plugin consumes, at "/light/detail/{road_id}".
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes over a NATS connection. It is the concrete
// Publisher used by the traffic-light plugin binary.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to url (empty string uses nats.DefaultURL).
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to pub/sub transport: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(subject string, data []byte) error {
	return p.conn.Publish(subject, data)
}

// Close releases the underlying connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// DetailSubject is the pub/sub path a road's combined light detail is
// published to.
func DetailSubject(roadID string) string {
	return fmt.Sprintf("/light/detail/%s", roadID)
}

// reportClient PUTs the flattened light list to the traffic light's own
// center_db_url, a prefix the road id is appended to.
type reportClient struct {
	client *http.Client
}

func newReportClient() *reportClient {
	return &reportClient{client: cleanhttp.DefaultClient()}
}

func (r *reportClient) send(baseURL, roadID string, lights []Light) error {
	if baseURL == "" {
		return fmt.Errorf("center_db_url is empty")
	}

	body, err := json.Marshal(lights)
	if err != nil {
		return fmt.Errorf("marshal traffic light report: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, baseURL+roadID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build traffic light report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send traffic light report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("center db responded with status %d", resp.StatusCode)
	}
	return nil
}
