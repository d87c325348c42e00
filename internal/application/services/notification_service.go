package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/infrastructure/observability"
)

// NotificationService handles sending notifications
type NotificationService struct {
	email       providers.EmailSender
	whatsapp    providers.MessageSender
	clinicEmail string
	siteURL     string
	metrics     *observability.Metrics
}

// NewNotificationService creates a new notification service. whatsapp may be nil.
func NewNotificationService(email providers.EmailSender, whatsapp providers.MessageSender, clinicEmail, siteURL string, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		email:       email,
		whatsapp:    whatsapp,
		clinicEmail: clinicEmail,
		siteURL:     strings.TrimRight(siteURL, "/"),
		metrics:     metrics,
	}
}

// NotifyAppointmentRequested emails the clinic and the patient, and messages
// the patient on WhatsApp when configured. Every channel is attempted; the
// returned error joins the failures.
func (n *NotificationService) NotifyAppointmentRequested(ctx context.Context, appointment *entities.Appointment) error {
	values := appointmentValues(appointment)
	values["dashboard_url"] = n.siteURL + "/admin/dashboard"

	var errs []error
	if n.clinicEmail != "" {
		errs = append(errs, n.sendEmail(ctx, entities.NotificationAppointmentRequest, []string{n.clinicEmail}, appointment.Email, values))
	}
	errs = append(errs, n.sendEmail(ctx, entities.NotificationAppointmentReceived, []string{appointment.Email}, n.clinicEmail, values))
	errs = append(errs, n.sendWhatsApp(ctx, entities.NotificationAppointmentReceived, appointment.Phone, values))
	return errors.Join(errs...)
}

// NotifyStatusChanged tells the patient about a status change
func (n *NotificationService) NotifyStatusChanged(ctx context.Context, appointment *entities.Appointment) error {
	values := appointmentValues(appointment)
	return errors.Join(
		n.sendEmail(ctx, entities.NotificationStatusChanged, []string{appointment.Email}, n.clinicEmail, values),
		n.sendWhatsApp(ctx, entities.NotificationStatusChanged, appointment.Phone, values),
	)
}

// SendPasswordReset emails a reset link carrying token
func (n *NotificationService) SendPasswordReset(ctx context.Context, user *entities.AdminUser, token string, ttl time.Duration) error {
	name := user.Name
	if name == "" {
		name = user.Email
	}
	values := map[string]string{
		"name":       name,
		"reset_url":  n.siteURL + "/admin/reset-password?token=" + url.QueryEscape(token),
		"expires_in": ttl.String(),
	}
	return n.sendEmail(ctx, entities.NotificationPasswordReset, []string{user.Email}, "", values)
}

func (n *NotificationService) sendEmail(ctx context.Context, notifType entities.NotificationType, to []string, replyTo string, values map[string]string) error {
	if n.email == nil {
		return nil
	}
	tmpl, ok := notificationTemplates[notifType][entities.ChannelEmail]
	if !ok {
		return fmt.Errorf("no email template for %s", notifType)
	}

	escaped := make(map[string]string, len(values))
	for k, v := range values {
		escaped[k] = html.EscapeString(v)
	}

	msg := providers.EmailMessage{
		To:      to,
		ReplyTo: replyTo,
		Subject: renderTemplate(tmpl.Subject, values),
		HTML:    renderTemplate(tmpl.Body, escaped),
	}
	if err := n.email.SendEmail(ctx, msg); err != nil {
		observability.RecordNotificationError(ctx, n.metrics, string(entities.ChannelEmail))
		log.Ctx(ctx).Error().Err(err).Str("type", string(notifType)).Msg("Failed to send email notification")
		return fmt.Errorf("email %s: %w", notifType, err)
	}
	return nil
}

func (n *NotificationService) sendWhatsApp(ctx context.Context, notifType entities.NotificationType, phone string, values map[string]string) error {
	if n.whatsapp == nil || strings.TrimSpace(phone) == "" {
		return nil
	}
	tmpl, ok := notificationTemplates[notifType][entities.ChannelWhatsApp]
	if !ok {
		return nil
	}
	if err := n.whatsapp.SendText(ctx, phone, renderTemplate(tmpl.Body, values)); err != nil {
		observability.RecordNotificationError(ctx, n.metrics, string(entities.ChannelWhatsApp))
		log.Ctx(ctx).Error().Err(err).Str("type", string(notifType)).Msg("Failed to send WhatsApp notification")
		return fmt.Errorf("whatsapp %s: %w", notifType, err)
	}
	return nil
}

func appointmentValues(a *entities.Appointment) map[string]string {
	doctor := a.Doctor
	if doctor == "" {
		doctor = "Any available"
	}
	return map[string]string{
		"appointment_id":  a.ID,
		"patient_name":    a.FullName(),
		"patient_email":   a.Email,
		"patient_phone":   a.Phone,
		"specialty":       a.Specialty.DisplayName(),
		"date":            a.Date.Long(),
		"time":            a.Time,
		"doctor":          doctor,
		"reason":          a.Reason,
		"additional_info": a.AdditionalInfo,
		"status":          string(a.Status),
	}
}

// renderTemplate replaces {{placeholders}}. A {{#if key}}...{{/if}} section is
// kept only when key has a non-empty value.
func renderTemplate(template string, values map[string]string) string {
	for {
		start := strings.Index(template, "{{#if ")
		if start < 0 {
			break
		}
		nameEnd := strings.Index(template[start:], "}}")
		end := strings.Index(template[start:], "{{/if}}")
		if nameEnd < 0 || end < 0 || end < nameEnd {
			break
		}
		key := strings.TrimSpace(template[start+len("{{#if ") : start+nameEnd])
		inner := template[start+nameEnd+2 : start+end]
		if strings.TrimSpace(values[key]) == "" {
			inner = ""
		}
		template = template[:start] + inner + template[start+end+len("{{/if}}"):]
	}

	result := template
	for placeholder, value := range values {
		result = strings.ReplaceAll(result, "{{"+placeholder+"}}", value)
	}
	return result
}
