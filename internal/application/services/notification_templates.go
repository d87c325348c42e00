package services

import "github.com/zatekoja/clinic-site/internal/domain/entities"

var notificationTemplates = map[entities.NotificationType]map[entities.NotificationChannel]entities.NotificationTemplate{
	entities.NotificationAppointmentRequest: {
		entities.ChannelEmail: {
			Subject: "New {{specialty}} appointment request: {{patient_name}}",
			Body: `<h2>New appointment request</h2>
<p><strong>Patient:</strong> {{patient_name}}<br>
<strong>Email:</strong> {{patient_email}}<br>
<strong>Phone:</strong> {{patient_phone}}</p>
<p><strong>Department:</strong> {{specialty}}<br>
<strong>Date:</strong> {{date}}<br>
<strong>Time:</strong> {{time}}<br>
<strong>Doctor:</strong> {{doctor}}</p>
<p><strong>Reason:</strong> {{reason}}</p>
{{#if additional_info}}<p><strong>Additional information:</strong> {{additional_info}}</p>{{/if}}
<p>Review it in the dashboard: {{dashboard_url}}</p>`,
		},
	},
	entities.NotificationAppointmentReceived: {
		entities.ChannelEmail: {
			Subject: "We received your appointment request",
			Body: `<p>Dear {{patient_name}},</p>
<p>Thank you for requesting a {{specialty}} appointment on {{date}} at {{time}}.
Our team will contact you shortly to confirm.</p>
<p>Request reference: {{appointment_id}}</p>`,
		},
		entities.ChannelWhatsApp: {
			Body: "Hello {{patient_name}}, we received your {{specialty}} appointment request for {{date}} at {{time}}. We will confirm shortly. Ref: {{appointment_id}}",
		},
	},
	entities.NotificationStatusChanged: {
		entities.ChannelEmail: {
			Subject: "Your appointment is {{status}}",
			Body: `<p>Dear {{patient_name}},</p>
<p>Your {{specialty}} appointment on {{date}} at {{time}} is now <strong>{{status}}</strong>.</p>`,
		},
		entities.ChannelWhatsApp: {
			Body: "Hello {{patient_name}}, your {{specialty}} appointment on {{date}} at {{time}} is now {{status}}.",
		},
	},
	entities.NotificationPasswordReset: {
		entities.ChannelEmail: {
			Subject: "Reset your admin password",
			Body: `<p>Hello {{name}},</p>
<p>Use the link below to choose a new password. It expires in {{expires_in}}.</p>
<p><a href="{{reset_url}}">{{reset_url}}</a></p>
<p>If you did not request a reset you can ignore this email.</p>`,
		},
	},
}
