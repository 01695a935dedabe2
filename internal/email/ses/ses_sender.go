package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"faturas/internal/domain"
	"faturas/internal/email"
	"faturas/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	to          []string
}

// NewSESSender creates a new SES-backed ReportSender.
func NewSESSender(region, fromAddress, fromName string, to []string) (port.ReportSender, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("ses sender: no recipients configured")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		to:          to,
	}, nil
}

func (s *sesSender) SendBatchReport(ctx context.Context, summary *domain.BatchSummary) error {
	report := email.RenderReport(summary)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.to,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &report.Subject},
				Body: &types.Body{
					Html: &types.Content{Data: &report.HTML},
					Text: &types.Content{Data: &report.Text},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
