package service

import (
	"errors"
	"fmt"
	"time"

	"smsledger/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled 邮件服务未启用
var ErrEmailDisabled = errors.New("邮件服务未启用，请配置 email.enabled=true")

// Notifier 账户安全通知
type Notifier interface {
	SendWebhookKeyRegeneratedEmail(toEmail, username string, at time.Time) error
}

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendWebhookKeyRegeneratedEmail 发送 Webhook 密钥重置通知
func (s *EmailService) SendWebhookKeyRegeneratedEmail(toEmail, username string, at time.Time) error {
	if !s.cfg.Enabled {
		return ErrEmailDisabled
	}
	subject := "【短信记账】Webhook 密钥已重置"
	return s.sendEmail(toEmail, subject, s.generateKeyRegeneratedBody(username, at))
}

// generateKeyRegeneratedBody 生成密钥重置通知内容
func (s *EmailService) generateKeyRegeneratedBody(username string, at time.Time) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; border-radius: 4px; }
        .warning p { margin: 0; color: #856404; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>📩 短信记账</h1></div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>您的短信转发 Webhook 密钥已于 <strong>%s</strong> 重置，旧密钥已立即失效。</p>
            <p>请在短信转发工具中更新为新的密钥，否则新的短信将无法入账。</p>
            <div class="warning">
                <p>⚠️ 如果这不是您本人的操作，请立即登录并再次重置密钥。</p>
            </div>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>
`, username, at.Format("2006-01-02 15:04:05"))
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}
