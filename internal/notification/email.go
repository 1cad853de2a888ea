package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/config"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

type emailClient interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// EmailSender renders trip summaries and sends them through Resend. Without
// an API key it only logs what it would have sent.
type EmailSender struct {
	config  config.EmailConfig
	client  emailClient
	tmpl    *template.Template
	metrics *EmailMetrics
}

func NewEmailSender(cfg config.EmailConfig) *EmailSender {
	return NewEmailSenderWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailSenderWithRegistry(cfg config.EmailConfig, reg prometheus.Registerer) *EmailSender {
	log := logger.GetLogger()

	var client emailClient
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey).Emails
		log.Infow("Initializing email sender",
			"from", cfg.FromAddress,
			"apiKey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))
	} else {
		log.Warn("RESEND_API_KEY not set, summary emails will only be logged")
	}

	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsplit_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsplit_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsplit_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}
	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailSender{
		config:  cfg,
		client:  client,
		tmpl:    template.Must(template.New("trip-summary").Funcs(templateFuncs).Parse(tripSummaryEmailTemplate)),
		metrics: metrics,
	}
}

func (s *EmailSender) SendTripSummary(ctx context.Context, job types.SummaryEmailJob) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if strings.TrimSpace(job.RecipientEmail) == "" {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("summary email job has no recipient")
	}

	subject, html, err := s.render(job)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to render summary email", "tripId", job.TripSummary.TripID, "error", err)
		return err
	}

	if s.client == nil {
		log.Infow("Email delivery disabled, summary email not sent",
			"to", logger.MaskEmail(job.RecipientEmail),
			"subject", subject)
		s.metrics.sentCount.Inc()
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{job.RecipientEmail},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.client.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(job.RecipientEmail),
			"subject", subject)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"to", logger.MaskEmail(job.RecipientEmail),
		"subject", subject)
	return nil
}

type summaryEmailData struct {
	RecipientName string
	Summary       types.TripSummary
	Currencies    []currencyTotal
}

type currencyTotal struct {
	Code   string
	Amount decimal.Decimal
}

func (s *EmailSender) render(job types.SummaryEmailJob) (subject, html string, err error) {
	sum := job.TripSummary
	data := summaryEmailData{
		RecipientName: job.RecipientName,
		Summary:       sum,
		Currencies:    sortedCurrencyTotals(sum.ExpensesByCurrency),
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}
	return fmt.Sprintf("Trip summary: %s", sum.TripTitle), buf.String(), nil
}

func sortedCurrencyTotals(byCurrency map[string]decimal.Decimal) []currencyTotal {
	totals := make([]currencyTotal, 0, len(byCurrency))
	for code, amount := range byCurrency {
		totals = append(totals, currencyTotal{Code: code, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Code < totals[j].Code })
	return totals
}

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

const tripSummaryEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Trip summary</title>
    <style>
        body { font-family: sans-serif; background-color: #f7f7f7; color: #333333; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 30px; border-radius: 12px; }
        h1 { color: #1f7a4d; font-size: 26px; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
        th, td { text-align: left; padding: 6px 4px; border-bottom: 1px solid #eeeeee; }
        td.amount { text-align: right; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Summary.TripTitle}} is closed</h1>
        <p>Hi {{.RecipientName}}!</p>
        <p>The trip{{with .Summary.Destination}} to {{.}}{{end}}{{with date .Summary.StartDate}} starting {{.}}{{end}} has been settled. Here is how everybody's spending adds up.</p>

        <h2>Total: {{money .Summary.TotalExpenses}} {{.Summary.ReferenceCurrency}}</h2>
        {{if .Currencies}}
        <table>
            <tr><th>Currency</th><th>Spent</th></tr>
            {{range .Currencies}}<tr><td>{{.Code}}</td><td class="amount">{{money .Amount}}</td></tr>
            {{end}}
        </table>
        {{end}}

        <table>
            <tr><th>Participant</th><th>Expenses</th><th>Spent ({{.Summary.ReferenceCurrency}})</th></tr>
            {{range .Summary.ParticipantExpenses}}<tr><td>{{.Name}} {{.Surname}}</td><td>{{.ExpenseCount}}</td><td class="amount">{{money .TotalSpent}}</td></tr>
            {{end}}
        </table>

        {{if .Summary.PaymentSummary}}
        <h2>Who pays whom</h2>
        <table>
            {{range .Summary.PaymentSummary}}<tr><td>{{.From}} &rarr; {{.To}}</td><td class="amount">{{money .Amount}} {{$.Summary.ReferenceCurrency}}</td></tr>
            {{end}}
        </table>
        {{else}}
        <p>Everybody spent the same amount, nobody owes anything.</p>
        {{end}}
    </div>
</body>
</html>`
