package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// ServiceKeyHeader carries the shared secret between this backend and the
// state-calculation service in both directions.
const ServiceKeyHeader = "X-Service-Key"

// HTTPNotifier POSTs {"flight_id": id} to the state-calculation service.
type HTTPNotifier struct {
	url        string
	serviceKey string
	client     *http.Client
}

func NewHTTPNotifier(url, serviceKey string, client *http.Client) *HTTPNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPNotifier{url: url, serviceKey: serviceKey, client: client}
}

func (n *HTTPNotifier) NotifyFlightFormed(ctx context.Context, flightID uint) error {
	body, err := FlightFormed{FlightID: flightID}.encode()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.serviceKey != "" {
		req.Header.Set(ServiceKeyHeader, n.serviceKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("call state service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("state service responded %d", resp.StatusCode)
	}
	return nil
}
