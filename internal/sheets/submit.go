package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/miidani/field-server/internal/models"
)

// Submit serializes the draft and POSTs it to the script write endpoint.
//
// The endpoint was built for opaque-response browser clients: its reply
// is not a usable acknowledgment, and "server accepted and stored" cannot
// be distinguished from "server silently rejected". A completed round
// trip is therefore Delivered; when the transport does expose a readable
// 2xx status the ack is additionally Confirmed. A transport-level error
// is the only failure path.
func (c *Client) Submit(ctx context.Context, draft models.ReportDraft) (*models.SubmissionAck, error) {
	payload := struct {
		models.ReportDraft
		UrgencyLabel string `json:"urgency_label"`
	}{
		ReportDraft:  draft,
		UrgencyLabel: models.UrgencyLabels[draft.Urgency],
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the body carries no usable ack.
	_, _ = io.Copy(io.Discard, resp.Body)

	ack := &models.SubmissionAck{
		Reference:   uuid.NewString()[:8],
		Delivered:   true,
		Confirmed:   resp.StatusCode >= 200 && resp.StatusCode <= 299,
		SubmittedAt: c.now(),
	}

	c.logger.Infow("Report forwarded to sheet",
		"reference", ack.Reference,
		"confirmed", ack.Confirmed,
		"region", draft.Region,
		"douar", draft.Douar,
		"urgency", draft.Urgency,
	)
	return ack, nil
}
