package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"podsafe/internal/inputprocessor"
	"podsafe/internal/models"
	"podsafe/internal/store"
	"podsafe/pkg/classifier"
	"podsafe/pkg/keywords"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// User-facing failure messages.
const (
	MessageEmptyInput    = "Please provide a more detailed podcast description"
	MessageRequestFailed = "Failed to analyze podcast. Please try again."
)

// Checker runs one description through extraction and classification.
type Checker interface {
	Check(ctx context.Context, params CheckParams) (*models.Check, error)
}

// CheckParams describes a single check request.
type CheckParams struct {
	Input string
	// Raw disables file and URL detection; the input is used as description text.
	Raw bool
}

// CheckService extracts keywords from podcast descriptions and asks the
// configured classifier whether the podcast is kid-friendly.
type CheckService struct {
	classifier classifier.Classifier
	processor  inputprocessor.Processor
	store      store.CheckStore
	timeout    time.Duration
}

// NewCheckService creates a CheckService. checkStore may be nil, in which
// case checks are not recorded. A zero timeout leaves the caller's deadline in charge.
func NewCheckService(c classifier.Classifier, p inputprocessor.Processor, checkStore store.CheckStore, timeout time.Duration) *CheckService {
	if p == nil {
		p = inputprocessor.New(inputprocessor.Options{})
	}
	return &CheckService{
		classifier: c,
		processor:  p,
		store:      checkStore,
		timeout:    timeout,
	}
}

// Keywords preprocesses the input and returns its keyword set without classifying it.
func (s *CheckService) Keywords(ctx context.Context, params CheckParams) ([]string, error) {
	text, err := s.prepare(ctx, params)
	if err != nil {
		return nil, err
	}
	return keywords.Extract(text), nil
}

// Check runs the full pipeline. The returned check is non-nil whenever the
// input could be read, including when err is models.ErrEmptyInput or wraps
// classifier.ErrRequestFailed, so callers can report what was attempted.
func (s *CheckService) Check(ctx context.Context, params CheckParams) (*models.Check, error) {
	text, err := s.prepare(ctx, params)
	if err != nil {
		return nil, err
	}

	check := &models.Check{
		ID:          uuid.New(),
		Description: text,
		Keywords:    keywords.Extract(text),
		Provider:    s.classifier.Name(),
		CreatedAt:   time.Now().UTC(),
	}

	if len(check.Keywords) == 0 {
		check.Status = models.CheckStatusEmptyInput
		check.Error = models.ErrEmptyInput.Error()
		log.WithField("check_id", check.ID).Debug("Description produced no keywords, skipping classification")
		s.record(ctx, check)
		return check, models.ErrEmptyInput
	}

	log.WithFields(log.Fields{
		"check_id": check.ID,
		"provider": check.Provider,
		"keywords": check.Keywords,
	}).Info("Sending keywords for classification")

	classifyCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		classifyCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.classifier.Classify(classifyCtx, check.Keywords)
	if err != nil {
		if !errors.Is(err, classifier.ErrRequestFailed) {
			err = fmt.Errorf("%w: %w", classifier.ErrRequestFailed, err)
		}
		check.Status = models.CheckStatusFailed
		check.Error = err.Error()
		log.WithFields(log.Fields{
			"check_id": check.ID,
			"elapsed":  time.Since(start),
		}).WithError(err).Warn("Classification failed")

		// A superseded request is not an outcome worth keeping.
		if !errors.Is(ctx.Err(), context.Canceled) {
			s.record(ctx, check)
		}
		return check, err
	}

	check.Status = models.CheckStatusSucceeded
	check.IsForKids = result.IsForKids
	// The received result is shown as-is, even when the echoed set is empty.
	check.Keywords = result.Keywords
	log.WithFields(log.Fields{
		"check_id":    check.ID,
		"is_for_kids": result.IsForKids,
		"keywords":    result.Keywords,
		"elapsed":     time.Since(start),
	}).Info("Classification result received")

	s.record(ctx, check)
	return check, nil
}

func (s *CheckService) prepare(ctx context.Context, params CheckParams) (string, error) {
	if params.Raw {
		return s.processor.ProcessText(params.Input).Body, nil
	}
	res, err := s.processor.Process(ctx, strings.TrimSpace(params.Input))
	if err != nil {
		return "", fmt.Errorf("failed to process input: %w", err)
	}
	return res.Body, nil
}

// record stores the check; failures are logged and otherwise ignored.
func (s *CheckService) record(ctx context.Context, check *models.Check) {
	if s.store == nil {
		return
	}
	if err := s.store.RecordCheck(context.WithoutCancel(ctx), check); err != nil {
		log.WithField("check_id", check.ID).WithError(err).Warn("Failed to record check")
	}
}

// UserMessage maps a check error to the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrEmptyInput):
		return MessageEmptyInput
	default:
		return MessageRequestFailed
	}
}
