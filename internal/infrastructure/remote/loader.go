// Package remote fetches the published aggregate snapshot over HTTP. It is
// the preferred read path; the pipeline degrades to local artifacts when it
// fails.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"IncidentIngest/internal/domain"
	"IncidentIngest/internal/ports"
)

// AggregatePath is the blob path of the published snapshot.
const AggregatePath = "/data/tr_api.json"

// Loader reads the aggregate from the public blob endpoint.
type Loader struct {
	baseURL string
	client  *retryablehttp.Client
	logger  *slog.Logger
}

var _ ports.SnapshotLoader = (*Loader)(nil)

// New wires the public read endpoint; transient HTTP failures are retried by
// the underlying client.
func New(baseURL string, log *slog.Logger) *Loader {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 15 * time.Second
	client.Logger = nil
	return &Loader{baseURL: baseURL, client: client, logger: log}
}

// LoadAggregate fetches and decodes the snapshot. A snapshot missing any of
// the three collections is treated as unusable.
func (l *Loader) LoadAggregate(ctx context.Context) (domain.Aggregate, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+AggregatePath, nil)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("fetch aggregate: %w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Aggregate{}, fmt.Errorf("fetch aggregate: %w: unexpected status %s", domain.ErrTransport, resp.Status)
	}

	var agg domain.Aggregate
	if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
		return domain.Aggregate{}, fmt.Errorf("decode aggregate: %w: %v", domain.ErrTransport, err)
	}

	if agg.Events == nil || agg.Sources == nil || agg.Associations == nil {
		return domain.Aggregate{}, fmt.Errorf("aggregate snapshot incomplete: %w", domain.ErrTransport)
	}

	if l.logger != nil {
		l.logger.Debug("aggregate loaded from remote", "events", len(agg.Events))
	}
	return agg, nil
}
