package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"gaduka/config"
)

// SendEmail sends an HTML email through the configured SMTP account.
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Gaduka <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B4332; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B4332; line-height: 1.6; }
			.content h2 { color: #1B4332; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F5E9; padding: 15px; border-radius: 4px; border-left: 4px solid #52B788; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">Gaduka — платформа обучения и сообщество</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendModerationDecisionEmail notifies the course author about a moderation
// decision. Best-effort: the lifecycle transition has already committed.
func SendModerationDecisionEmail(email, courseTitle, decision, comment string) error {
	var subject, body string
	switch decision {
	case "approve":
		subject = "Курс опубликован: " + courseTitle
		body = fmt.Sprintf(`<h2>Поздравляем!</h2>
			<p>Ваш курс <b>%s</b> прошел модерацию и опубликован в каталоге.</p>`, courseTitle)
	case "reject":
		subject = "Курс отклонен: " + courseTitle
		body = fmt.Sprintf(`<h2>Курс отклонен</h2>
			<p>Ваш курс <b>%s</b> не прошел модерацию.</p>
			<div class="info-box">%s</div>
			<p>Исправьте замечания и отправьте курс повторно.</p>`, courseTitle, comment)
	default:
		subject = "Статус курса изменен: " + courseTitle
		body = fmt.Sprintf(`<p>Статус вашего курса <b>%s</b> изменен модератором.</p>`, courseTitle)
	}

	return SendEmail([]string{email}, subject, getEmailTemplate("Модерация курса", body))
}

// SendCertificateEmail notifies the learner about an issued certificate.
func SendCertificateEmail(email, courseTitle, verificationCode string) error {
	body := fmt.Sprintf(`<h2>Курс завершен!</h2>
		<p>Вы успешно завершили курс <b>%s</b>.</p>
		<div class="info-box">Код проверки сертификата: <b>%s</b></div>`, courseTitle, verificationCode)

	return SendEmail([]string{email}, "Ваш сертификат готов", getEmailTemplate("Сертификат", body))
}
