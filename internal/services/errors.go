package services

import "errors"

// Sentinel errors of the escalation core. Handlers map these onto HTTP
// statuses; the runner uses them to classify per-receivable failures.
var (
	// ErrQuotaExceeded: the owner's plan email quota is exhausted. On the
	// manual path it propagates to the caller so the UI can show an upgrade
	// prompt; on the scheduled path it only skips that owner's sends.
	ErrQuotaExceeded = errors.New("quota d'envoi atteint pour le plan gratuit")

	// ErrNoEmailSettings: the owner has no SMTP configuration. Fails closed.
	ErrNoEmailSettings = errors.New("paramètres email manquants")

	// ErrNoTemplate: the stage is enabled but its template is empty.
	ErrNoTemplate = errors.New("aucun modèle configuré pour cette relance")

	// ErrNoRecipient: neither the receivable nor its client carry an address.
	ErrNoRecipient = errors.New("aucun destinataire pour la relance")

	// ErrTerminalStage: the receivable already reached a terminal status.
	ErrTerminalStage = errors.New("relance impossible: statut terminal")

	// ErrStageAlreadySent: a log row for this stage already exists.
	ErrStageAlreadySent = errors.New("relance déjà envoyée pour cette étape")

	// ErrNothingToSend: no enabled stage remains for a manual send.
	ErrNothingToSend = errors.New("aucune étape de relance à envoyer")
)
