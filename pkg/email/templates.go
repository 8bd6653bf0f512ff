package email

import (
	"fmt"
	"strings"

	"github.com/zafarimam8588/ayo-portal/pkg/sanitizer"
)

// Template tags used for Postmark analytics and dev-sender filenames.
const (
	TagOTP          = "otp"
	TagWelcome      = "welcome"
	TagApproval     = "member-approved"
	TagRejection    = "member-rejected"
	TagContactReply = "contact-reply"
	TagBroadcast    = "broadcast"
)

// layout is the shared shell for every portal email. The first %s is the
// hidden preheader, the second the heading, the third the body markup.
const layout = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Arial,Helvetica,sans-serif;">
<div style="display:none;max-height:0;overflow:hidden;">%s</div>
<table role="presentation" width="100%%" cellpadding="0" cellspacing="0">
<tr><td align="center" style="padding:24px;">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;">
<tr><td style="padding:32px;">
<h2 style="margin:0 0 16px;color:#1a1a2e;">%s</h2>
<div style="color:#444444;font-size:15px;line-height:1.6;">%s</div>
</td></tr>
<tr><td style="padding:16px 32px;border-top:1px solid #eeeeee;color:#999999;font-size:12px;">
AYO Membership Portal &middot; this is an automated message, replies go to our support team
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`

func render(preheader, heading, bodyHTML string) string {
	return fmt.Sprintf(layout, sanitizer.Preheader(preheader, 0), heading, bodyHTML)
}

// OTPEmail builds the email-verification message. The code passes through
// the digits-only allowlist so it round-trips exactly.
func OTPEmail(to, name, code string) (SendEmailParams, error) {
	code = sanitizer.OTP(code)
	if code == "" {
		return SendEmailParams{}, fmt.Errorf("%w: otp code is empty after sanitization", ErrInvalidParams)
	}

	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Use the code below to verify your email address. It expires in 10 minutes.</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold;color:#1a1a2e;">%s</p>
<p>If you did not request this, you can safely ignore this email.</p>`,
		sanitizer.Name(name), code)

	return SendEmailParams{
		SendTo:   to,
		Subject:  "Your verification code",
		BodyHTML: render("Your verification code is "+code, "Verify your email", body),
		Tag:      TagOTP,
	}, nil
}

// WelcomeEmail greets a newly verified member.
func WelcomeEmail(to, name string) SendEmailParams {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your account is ready. Complete your profile and submit it for review to
become a full member.</p>`,
		sanitizer.Name(name))

	return SendEmailParams{
		SendTo:   to,
		Subject:  "Welcome to the AYO membership portal",
		BodyHTML: render("Your account is ready", "Welcome aboard", body),
		Tag:      TagWelcome,
	}
}

// ApprovalEmail notifies a member their application was approved. The
// optional personal message from the approving admin is validated and
// sanitized through the template schema before interpolation.
func ApprovalEmail(to, name, membershipID, message string) (SendEmailParams, error) {
	data, err := sanitizer.TemplateData(
		map[string]any{
			"name":    name,
			"message": optionalString(message),
		},
		map[string]sanitizer.FieldType{
			"name":    sanitizer.StringField{MaxLength: 100},
			"message": sanitizer.StringField{MaxLength: 1000, Optional: true},
		},
	)
	if err != nil {
		return SendEmailParams{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p>Hi %s,</p>
<p>Congratulations! Your membership application has been approved.</p>
<p>Your membership ID is <strong>%s</strong>. Keep it handy; you will need it
for member events and correspondence.</p>`,
		data["name"], sanitizer.MembershipID(membershipID))

	if msg := data["message"]; msg != "" {
		fmt.Fprintf(&b, `<p style="border-left:3px solid #1a1a2e;padding-left:12px;color:#555555;">%s</p>`, msg)
	}

	return SendEmailParams{
		SendTo:   to,
		Subject:  "Your membership application has been approved",
		BodyHTML: render("Your membership application has been approved", "Application approved", b.String()),
		Tag:      TagApproval,
	}, nil
}

// RejectionEmail notifies a member their application was rejected, quoting
// the sanitized reason. The reason is stored verbatim and only sanitized
// here, at send time.
func RejectionEmail(to, name, reason string) SendEmailParams {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We reviewed your membership application and unfortunately cannot approve
it at this time.</p>
<p style="border-left:3px solid #b00020;padding-left:12px;color:#555555;">%s</p>
<p>You can update your profile and submit it again at any time.</p>`,
		sanitizer.Name(name), sanitizer.MessageBody(reason))

	return SendEmailParams{
		SendTo:   to,
		Subject:  "An update on your membership application",
		BodyHTML: render("An update on your membership application", "Application update", body),
		Tag:      TagRejection,
	}
}

// ContactReplyEmail carries an admin's reply to a contact-form message.
func ContactReplyEmail(to, name, subject, reply string) SendEmailParams {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Thanks for reaching out. Here is our reply to your message:</p>
<div style="background-color:#f4f4f7;border-radius:6px;padding:16px;">%s</div>`,
		sanitizer.Name(name), sanitizer.MessageBody(reply))

	return SendEmailParams{
		SendTo:   to,
		Subject:  "Re: " + sanitizer.Subject(subject),
		BodyHTML: render("We replied to your message", "Our reply", body),
		Tag:      TagContactReply,
	}
}

// BroadcastEmail builds one newsletter email for a subscriber.
func BroadcastEmail(to, subject, bodyText string) SendEmailParams {
	subject = sanitizer.Subject(subject)
	return SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: render(subject, subject, sanitizer.MessageBody(bodyText)),
		Tag:      TagBroadcast,
	}
}

// optionalString maps "" to nil so the template schema treats an absent
// admin message as an unset optional field.
func optionalString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
