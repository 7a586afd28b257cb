// Package feed parses the legacy JSON exports that seed the database:
// the GL master feed and the tenant CAM reference feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
	"github.com/camrecon/camrecon/internal/settings"
)

// Parser implements legacy JSON feed parsing.
type Parser struct{}

// NewParser creates a new feed parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed records carry numbers as strings, raw numbers, or nulls depending
// on which export produced them; FlexString absorbs all three.
type glRecord struct {
	PropertyID  settings.FlexString `json:"Property ID"`
	GLAccount   settings.FlexString `json:"GL Account"`
	Description settings.FlexString `json:"Description"`
	Period      settings.FlexString `json:"PERIOD"`
	NetAmount   settings.FlexString `json:"Net Amount"`
}

type tenantRefRecord struct {
	TenantID        settings.FlexString `json:"TenantID"`
	PropertyID      settings.FlexString `json:"PropertyID"`
	TenantName      settings.FlexString `json:"TenantName"`
	MatchedEstimate settings.FlexString `json:"MatchedEstimate"`
}

// The custom overrides feed uses snake_case keys, unlike the other two.
type overrideRecord struct {
	TenantID       settings.FlexString `json:"tenant_id"`
	PropertyID     settings.FlexString `json:"property_id"`
	OverrideAmount settings.FlexString `json:"override_amount"`
	Description    settings.FlexString `json:"description"`
}

// ParseGL parses a GL master feed and returns the transactions for one
// property, or for all properties when propertyID is empty. Records with
// an unparsable amount are kept at zero so downstream classification can
// drop them; records missing an account or period are skipped.
func (p *Parser) ParseGL(ctx context.Context, reader io.Reader, propertyID string) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []glRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse GL feed: %w", err)
	}

	var transactions []model.Transaction
	skipped := 0
	for _, record := range records {
		pid := record.PropertyID.String()
		if propertyID != "" && pid != propertyID {
			continue
		}

		account := record.GLAccount.String()
		period := record.Period.String()
		if pid == "" || account == "" || period == "" {
			skipped++
			continue
		}

		raw := record.NetAmount.String()
		amount := decimal.Zero
		if raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				common.LogWarn("invalid net amount in GL feed, using zero", common.Fields{
					"gl_account": account,
					"period":     period,
					"raw":        raw,
				})
			} else {
				amount = parsed
			}
		}

		transactions = append(transactions, model.Transaction{
			PropertyID:  pid,
			Account:     model.Account(account),
			Description: record.Description.String(),
			Period:      period,
			NetAmount:   amount,
		})
	}

	if skipped > 0 {
		common.LogWarn("skipped incomplete GL feed records", common.Fields{
			"skipped": skipped,
		})
	}
	return transactions, nil
}

// ParseTenantRefs parses a tenant CAM reference feed into prior-billing
// records. An empty matched estimate means no prior billing and comes
// back as zero; an unparsable one is logged and treated the same way.
func (p *Parser) ParseTenantRefs(ctx context.Context, reader io.Reader) ([]model.TenantRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []tenantRefRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse tenant reference feed: %w", err)
	}

	var refs []model.TenantRef
	for _, record := range records {
		tenantID := record.TenantID.String()
		pid := record.PropertyID.String()
		if tenantID == "" || pid == "" {
			continue
		}

		oldMonthly := decimal.Zero
		raw := record.MatchedEstimate.String()
		if raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				common.LogWarn("invalid matched estimate, assuming no prior billing", common.Fields{
					"tenant_id": tenantID,
					"raw":       raw,
				})
			} else {
				oldMonthly = parsed
			}
		}

		refs = append(refs, model.TenantRef{
			TenantID:   tenantID,
			PropertyID: pid,
			TenantName: record.TenantName.String(),
			OldMonthly: oldMonthly,
		})
	}

	return refs, nil
}

// ParseOverrides parses a custom overrides feed into manual billing
// adjustments. Records missing a tenant or property id are skipped; an
// unparsable amount is logged and the record dropped.
func (p *Parser) ParseOverrides(ctx context.Context, reader io.Reader) ([]model.Override, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []overrideRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse overrides feed: %w", err)
	}

	var overrides []model.Override
	for _, record := range records {
		tenantID := record.TenantID.String()
		pid := record.PropertyID.String()
		if tenantID == "" || pid == "" {
			continue
		}

		amount := decimal.Zero
		if raw := record.OverrideAmount.String(); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				common.LogWarn("invalid override amount in feed, record skipped", common.Fields{
					"tenant_id": tenantID,
					"raw":       raw,
				})
				continue
			}
			amount = parsed
		}

		overrides = append(overrides, model.Override{
			TenantID:    tenantID,
			PropertyID:  pid,
			Amount:      amount,
			Description: record.Description.String(),
		})
	}

	return overrides, nil
}
