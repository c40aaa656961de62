// Package outreach tracks contact attempts against leads and their outcomes.
package outreach

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var validMethods = map[model.OutreachMethod]bool{
	model.OutreachEmail:    true,
	model.OutreachPhone:    true,
	model.OutreachWhatsApp: true,
	model.OutreachInPerson: true,
}

var validStatuses = map[model.OutreachStatus]bool{
	model.OutreachSent:          true,
	model.OutreachInterested:    true,
	model.OutreachNotInterested: true,
	model.OutreachCallback:      true,
	model.OutreachWon:           true,
	model.OutreachLost:          true,
}

// Tracker records outreach attempts and responses.
type Tracker struct {
	store store.Store
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// LogContact records a new contact attempt against a lead. The business must
// exist; the attempt starts in the sent state.
func (t *Tracker) LogContact(ctx context.Context, businessID string, method model.OutreachMethod, notes string) (*model.Outreach, error) {
	if !validMethods[method] {
		return nil, eris.Errorf("outreach: unknown method %q", method)
	}

	b, err := t.store.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	o := &model.Outreach{
		BusinessID: b.ID,
		Method:     method,
		Status:     model.OutreachSent,
		Notes:      notes,
	}
	if err := t.store.LogOutreach(ctx, o); err != nil {
		return nil, err
	}

	zap.L().Info("outreach logged",
		zap.String("business_id", b.ID),
		zap.String("business", b.Name),
		zap.String("method", string(method)),
	)
	return o, nil
}

// RecordResponse updates an attempt with the lead's response.
func (t *Tracker) RecordResponse(ctx context.Context, outreachID string, status model.OutreachStatus, notes string) error {
	if !validStatuses[status] {
		return eris.Errorf("outreach: unknown status %q", status)
	}
	if status == model.OutreachSent {
		return eris.New("outreach: a response cannot move an attempt back to sent")
	}

	if err := t.store.UpdateOutreachResponse(ctx, outreachID, status, notes); err != nil {
		return err
	}

	zap.L().Info("outreach response recorded",
		zap.String("outreach_id", outreachID),
		zap.String("status", string(status)),
	)
	return nil
}

// History returns the outreach attempts for one lead, newest first.
func (t *Tracker) History(ctx context.Context, businessID string) ([]model.Outreach, error) {
	return t.store.ListOutreach(ctx, store.OutreachFilter{BusinessID: businessID})
}

// PendingFollowups returns attempts that asked for a callback, oldest first,
// so the next call list starts with the lead who has waited longest.
func (t *Tracker) PendingFollowups(ctx context.Context) ([]model.Outreach, error) {
	attempts, err := t.store.ListOutreach(ctx, store.OutreachFilter{Status: model.OutreachCallback})
	if err != nil {
		return nil, err
	}

	// ListOutreach returns newest first; reverse in place.
	for i, j := 0, len(attempts)-1; i < j; i, j = i+1, j-1 {
		attempts[i], attempts[j] = attempts[j], attempts[i]
	}
	return attempts, nil
}

// Unanswered returns sent attempts older than the given age that never got a
// response.
func (t *Tracker) Unanswered(ctx context.Context, olderThan time.Duration) ([]model.Outreach, error) {
	attempts, err := t.store.ListOutreach(ctx, store.OutreachFilter{Status: model.OutreachSent})
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	var stale []model.Outreach
	for _, a := range attempts {
		if !a.ResponseReceived && a.ContactedAt.Before(cutoff) {
			stale = append(stale, a)
		}
	}
	return stale, nil
}
