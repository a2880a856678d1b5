package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

var (
	amountPattern      = regexp.MustCompile(`\(?-?\$\d{1,3}(?:,\d{3})*(?:\.\d+)?\)?`)
	tabularLinePattern = regexp.MustCompile(`\t| {3,}\S`)

	amountTypeKeywords = map[string][]string{
		"charge":      {"charge", "billed"},
		"payment":     {"payment", "paid"},
		"adjustment":  {"adjustment", "adj "},
		"balance":     {"balance due", "balance"},
		"copay":       {"copay", "co-pay"},
		"deductible":  {"deductible"},
		"coinsurance": {"coinsurance", "co-insurance"},
		"writeoff":    {"write-off", "writeoff", "write off"},
	}
)

var billingPatterns = []factPattern{
	{domain.FactBillingItem, amountPattern},
}

func classifyAmountType(context string) string {
	lower := strings.ToLower(context)
	for t, keywords := range amountTypeKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return t
			}
		}
	}
	return ""
}

// parseAmountCents converts a raw "$1,234.50" style match into integer
// cents, honoring parenthetical and leading-minus negatives.
func parseAmountCents(raw string) int64 {
	negative := strings.HasPrefix(raw, "(") || strings.HasPrefix(raw, "-")
	cleaned := strings.NewReplacer("(", "", ")", "", "$", "", ",", "", "-", "").Replace(raw)

	parts := strings.SplitN(cleaned, ".", 2)
	whole, _ := strconv.ParseInt(parts[0], 10, 64)
	cents := whole * 100
	if len(parts) == 2 {
		frac := parts[1]
		switch {
		case len(frac) == 1:
			frac += "0"
		case len(frac) > 2:
			frac = frac[:2]
		}
		f, _ := strconv.ParseInt(frac, 10, 64)
		cents += f
	}
	if negative {
		cents = -cents
	}
	return cents
}

// isTabularPage reports whether a page's text has the column alignment a
// billing ledger page typically renders with (§4.F tabular-page detection).
func isTabularPage(text string) bool {
	aligned := 0
	for _, line := range strings.Split(text, "\n") {
		if tabularLinePattern.MatchString(line) {
			aligned++
		}
	}
	return aligned >= 2
}

func parseBillingDetail(text string) *domain.BillingDetail {
	detail := &domain.BillingDetail{}

	if matches := amountPattern.FindAllString(text, -1); len(matches) > 0 {
		detail.AmountCents = parseAmountCents(matches[0])
	}
	detail.AmountType = classifyAmountType(text)
	detail.CPTCodes = dedupStrings(cptPattern.FindAllString(text, -1))
	detail.HCPCSCodes = dedupStrings(hcpcsPattern.FindAllString(text, -1))
	detail.ICD10Codes = dedupStrings(icd10Pattern.FindAllString(text, -1))
	for _, m := range revenueCodePattern.FindAllStringSubmatch(text, -1) {
		detail.RevenueCodes = append(detail.RevenueCodes, m[1])
	}
	detail.RevenueCodes = dedupStrings(detail.RevenueCodes)

	if detail.AmountCents == 0 && detail.AmountType == "" && len(detail.CPTCodes) == 0 &&
		len(detail.HCPCSCodes) == 0 && len(detail.ICD10Codes) == 0 && len(detail.RevenueCodes) == 0 {
		return nil
	}
	return detail
}

// Billing extracts one billing event per page of a billing document,
// parsing amounts, codes, and tabular-ledger structure (§4.F).
func Billing(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	dates := resolveDocumentDates(pages, anchor)

	var events []domain.Event
	var citations []domain.Citation
	for i, p := range pages {
		event, cit := buildBasicEvent(sourceDocumentID, providerID, p, domain.EventBillingEvent, dates[i], billingPatterns, i)
		event.Billing = parseBillingDetail(p.Text)
		if isTabularPage(p.Text) {
			event.SetFlag("tabular_billing_page")
		}
		events = append(events, event)
		citations = append(citations, cit...)
	}
	return events, citations
}
