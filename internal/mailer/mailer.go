package mailer

import (
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"fieldtrack/internal/config"
	"fieldtrack/internal/model"
)

// Result reports the outcome of a best-effort send. Callers log it or drop
// it; a failed notification never fails the operation that triggered it.
type Result struct {
	Sent bool
	Err  error
}

func failure(err error) Result { return Result{Err: err} }
func sent() Result             { return Result{Sent: true} }
func skipped() Result          { return Result{} }

// Mailer sends workflow notification emails over SMTP. With no SMTP host
// configured every send is a silent no-op.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// New builds a Mailer from configuration.
func New(cfg *config.Config, log zerolog.Logger) *Mailer {
	m := &Mailer{from: cfg.MailFrom, log: log}
	if cfg.SMTPHost != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}
	return m
}

func (m *Mailer) send(to []string, subject, body string) Result {
	if m.dialer == nil || len(to) == 0 {
		return skipped()
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return failure(fmt.Errorf("send mail %q: %w", subject, err))
	}
	return sent()
}

func sheetLabel(sheet *model.WorkSheet) (workerName, siteName string) {
	workerName = "Monteur"
	if sheet.Worker != nil {
		workerName = sheet.Worker.FullName()
	}
	siteName = "chantier"
	if sheet.Site != nil {
		siteName = sheet.Site.Nom
	}
	return workerName, siteName
}

// NotifySubmission alerts supervisors that a sheet awaits validation and
// confirms the submission to its owner.
func (m *Mailer) NotifySubmission(sheet *model.WorkSheet, supervisorEmails []string) Result {
	workerName, siteName := sheetLabel(sheet)
	date := sheet.DateTravail.Format("02/01/2006")

	res := m.send(supervisorEmails,
		fmt.Sprintf("Feuille de travail à valider — %s", workerName),
		fmt.Sprintf(
			"<p>%s a soumis une feuille de travail pour le chantier <b>%s</b> (journée du %s, %.2f h).</p>"+
				"<p>Elle attend votre validation.</p>",
			workerName, siteName, date, sheet.HeuresTotal))
	if res.Err != nil {
		return res
	}

	if sheet.Worker != nil && sheet.Worker.Email != "" {
		return m.send([]string{sheet.Worker.Email},
			"Votre feuille de travail a été soumise",
			fmt.Sprintf(
				"<p>Votre feuille de travail du %s (chantier %s) a bien été soumise pour validation.</p>",
				date, siteName))
	}
	return res
}

// NotifyValidation tells the owner the sheet was approved.
func (m *Mailer) NotifyValidation(sheet *model.WorkSheet, validatorLabel string) Result {
	if sheet.Worker == nil || sheet.Worker.Email == "" {
		return skipped()
	}
	_, siteName := sheetLabel(sheet)
	return m.send([]string{sheet.Worker.Email},
		"Votre feuille de travail a été validée",
		fmt.Sprintf(
			"<p>Votre feuille de travail du %s (chantier %s) a été validée par %s.</p>",
			sheet.DateTravail.Format("02/01/2006"), siteName, validatorLabel))
}

// NotifyRejection tells the owner the sheet was rejected, with the optional
// reason.
func (m *Mailer) NotifyRejection(sheet *model.WorkSheet, rejectorLabel, reason string) Result {
	if sheet.Worker == nil || sheet.Worker.Email == "" {
		return skipped()
	}
	_, siteName := sheetLabel(sheet)
	body := fmt.Sprintf(
		"<p>Votre feuille de travail du %s (chantier %s) a été rejetée par %s.</p>",
		sheet.DateTravail.Format("02/01/2006"), siteName, rejectorLabel)
	if reason != "" {
		body += fmt.Sprintf("<p>Motif : %s</p>", reason)
	}
	body += "<p>Vous pouvez la corriger puis la soumettre à nouveau.</p>"
	return m.send([]string{sheet.Worker.Email}, "Votre feuille de travail a été rejetée", body)
}

// NotifyStaleDraft reminds the owner a draft sheet was never submitted.
func (m *Mailer) NotifyStaleDraft(sheet *model.WorkSheet) Result {
	if sheet.Worker == nil || sheet.Worker.Email == "" {
		return skipped()
	}
	return m.send([]string{sheet.Worker.Email},
		"Feuille de travail en attente de soumission",
		fmt.Sprintf(
			"<p>Votre feuille de travail du %s est toujours en brouillon. Pensez à la soumettre.</p>",
			sheet.DateTravail.Format("02/01/2006")))
}
