// Package email delivers apartado notifications over SMTP.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const (
	expiryLayout = "02/01/2006 15:04"
	qrFilename   = "codigo-qr.png"
	qrContentID  = "<qrcode>"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Settings struct {
	From         string
	Brand        string
	StoreAddress string
	StoreHours   string
	StorePhone   string
	Location     *time.Location
	QRSize       int
	Attempts     int
}

func SettingsFromConfig(cfg config.SMTPConfig) (Settings, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "load timezone %q", cfg.Timezone)
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return Settings{
		From:         from,
		Brand:        cfg.Brand,
		StoreAddress: cfg.StoreAddress,
		StoreHours:   cfg.StoreHours,
		StorePhone:   cfg.StorePhone,
		Location:     loc,
		QRSize:       cfg.QRSize,
		Attempts:     cfg.Attempts,
	}, nil
}

func NewDialer(cfg config.SMTPConfig) *gomail.Dialer {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

type Sender struct {
	dialer    Dialer
	settings  Settings
	templates *template.Template
	logger    *zap.Logger
	backoff   time.Duration
}

func NewSender(dialer Dialer, settings Settings, logger *zap.Logger) (*Sender, error) {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Attempts <= 0 {
		settings.Attempts = 1
	}
	if settings.QRSize <= 0 {
		settings.QRSize = 300
	}

	tmpl, err := template.New("email").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"price": func(v float64) string { return fmt.Sprintf("€%.2f", v) },
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse email templates")
	}

	return &Sender{
		dialer:    dialer,
		settings:  settings,
		templates: tmpl,
		logger:    logger,
		backoff:   time.Second,
	}, nil
}

type templateData struct {
	Apartado     domain.Apartado
	Brand        string
	ExpiresAt    string
	StoreAddress string
	StoreHours   string
	StorePhone   string
	QRSize       int
}

// Subject returns the mail subject for kind.
func (s *Sender) Subject(kind domain.NotificationKind, a domain.Apartado) string {
	switch kind {
	case domain.NotificationConfirmation:
		return "👑 Apartado Confirmado - " + a.Product.Name
	case domain.NotificationPickup:
		return "✅ Producto Recogido - " + s.settings.Brand
	case domain.NotificationCancellation:
		return "❌ Apartado Cancelado - " + s.settings.Brand
	case domain.NotificationExpiration:
		return "⏰ Apartado Expirado - " + s.settings.Brand
	}
	return s.settings.Brand
}

// Render executes the HTML body for kind.
func (s *Sender) Render(kind domain.NotificationKind, a domain.Apartado) (string, error) {
	if !kind.Valid() {
		return "", errors.Newf("unknown notification kind %q", kind)
	}

	data := templateData{
		Apartado:     a,
		Brand:        s.settings.Brand,
		ExpiresAt:    a.ExpiresAt.In(s.settings.Location).Format(expiryLayout),
		StoreAddress: s.settings.StoreAddress,
		StoreHours:   s.settings.StoreHours,
		StorePhone:   s.settings.StorePhone,
		QRSize:       s.settings.QRSize,
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, string(kind)+".html", data); err != nil {
		return "", errors.Wrapf(err, "render %s", kind)
	}
	return buf.String(), nil
}

// Build assembles the message. Confirmations embed the pickup code as a QR
// image referenced from the body as cid:qrcode.
func (s *Sender) Build(kind domain.NotificationKind, a domain.Apartado) (*gomail.Message, error) {
	body, err := s.Render(kind, a)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.settings.From, s.settings.Brand)
	m.SetHeader("To", a.Customer.Email)
	m.SetHeader("Subject", s.Subject(kind, a))
	m.SetBody("text/html", body)

	if kind == domain.NotificationConfirmation {
		png, err := RenderQR(a.PickupCode, s.settings.QRSize)
		if err != nil {
			return nil, err
		}
		m.Embed(qrFilename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(png)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-ID": {qrContentID}}),
		)
	}
	return m, nil
}

// Notify builds and sends the message, retrying up to the configured
// attempts. It stops early when ctx is done.
func (s *Sender) Notify(ctx context.Context, kind domain.NotificationKind, a domain.Apartado) error {
	m, err := s.Build(kind, a)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= s.settings.Attempts; attempt++ {
		lastErr = s.send(ctx, m)
		if lastErr == nil {
			s.logger.Info("email sent",
				zap.String("kind", string(kind)),
				zap.String("apartado_id", a.ID),
				zap.String("to", a.Customer.Email))
			return nil
		}
		if ctx.Err() != nil {
			break
		}

		s.logger.Warn("email attempt failed",
			zap.Int("attempt", attempt),
			zap.String("kind", string(kind)),
			zap.String("apartado_id", a.ID),
			zap.Error(lastErr))

		if attempt < s.settings.Attempts {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "send email")
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}
	}
	return errors.Wrapf(lastErr, "send %s email", kind)
}

func (s *Sender) send(ctx context.Context, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Verify opens and closes an SMTP connection when the dialer supports it.
func (s *Sender) Verify() error {
	d, ok := s.dialer.(interface {
		Dial() (gomail.SendCloser, error)
	})
	if !ok {
		return nil
	}
	conn, err := d.Dial()
	if err != nil {
		return errors.Wrap(err, "dial smtp")
	}
	return conn.Close()
}

// RenderQR encodes code as a size x size PNG.
func RenderQR(code string, size int) ([]byte, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "encode qr")
	}
	return png, nil
}
