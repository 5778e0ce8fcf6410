package events

import (
	"context"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/pkg/email"
	"go-postulation-backend/pkg/logger"
)

// EmailNotifier sends a status email to the candidate after each committed
// state change. Failures are logged and dropped; notification delivery is
// never allowed to affect the engine.
type EmailNotifier struct {
	emailService  *email.EmailService
	candidateRepo domain.CandidateRepository
	vacancyRepo   domain.VacancyRepository
}

func NewEmailNotifier(svc *email.EmailService, candidateRepo domain.CandidateRepository, vacancyRepo domain.VacancyRepository) *EmailNotifier {
	return &EmailNotifier{
		emailService:  svc,
		candidateRepo: candidateRepo,
		vacancyRepo:   vacancyRepo,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, event domain.PostulationEvent) {
	if event.Type != domain.EventPostulationStateChanged {
		return
	}
	if !n.emailService.IsConfigured() {
		return
	}

	candidate, err := n.candidateRepo.GetSnapshot(ctx, event.CandidateID)
	if err != nil || candidate.Email == "" {
		logger.Log.Warn("skipping state-change email, candidate unavailable",
			"candidate_id", event.CandidateID, "error", err)
		return
	}

	vacancy, err := n.vacancyRepo.GetByID(ctx, event.VacancyID)
	if err != nil {
		logger.Log.Warn("skipping state-change email, vacancy unavailable",
			"vacancy_id", event.VacancyID, "error", err)
		return
	}

	data := email.StateChangeEmailData{
		RecipientEmail: candidate.Email,
		CandidateName:  candidate.FullName,
		VacancyTitle:   vacancy.Title,
		FromState:      string(event.FromState),
		ToState:        string(event.ToState),
	}

	if err := n.emailService.SendStateChangeEmail(data); err != nil {
		logger.Log.Error("failed to send state-change email",
			"postulation_id", event.PostulationID, "error", err)
	}
}

// AuditLogger records every committed event to the structured log, serving
// as the audit collaborator.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) Notify(_ context.Context, event domain.PostulationEvent) {
	logger.Log.Info("postulation event",
		"event_id", event.ID,
		"event_type", event.Type,
		"postulation_id", event.PostulationID,
		"vacancy_id", event.VacancyID,
		"from_state", event.FromState,
		"to_state", event.ToState,
		"actor_id", event.Actor.ID,
		"actor_role", event.Actor.Role,
		"timestamp", event.Timestamp)
}
