package entities

// NotificationChannel represents the delivery channel
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// NotificationType represents the notification purpose
type NotificationType string

const (
	NotificationAppointmentRequest  NotificationType = "appointment_request"
	NotificationAppointmentReceived NotificationType = "appointment_received"
	NotificationStatusChanged       NotificationType = "status_changed"
	NotificationPasswordReset       NotificationType = "password_reset"
)

// NotificationTemplate is a message body with {{placeholder}} fields
type NotificationTemplate struct {
	Type    NotificationType
	Channel NotificationChannel
	Subject string
	Body    string
}
