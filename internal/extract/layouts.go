package extract

import (
	"regexp"

	"faturas/internal/domain"
	"faturas/internal/normalize"
)

const (
	pcsMarker   = "PCS"
	pcsLabelled = `PCS[:\s]+(\d+(?:[.,]\d+)?)`
	anyNumber   = `(\d+(?:[.,]\d+)?)`
	slashDate   = `^\d{2}/\d{2}/\d{4}$`
)

// CegasPDF is the current printed invoice layout.
func CegasPDF() *RuleSet {
	return &RuleSet{
		Name:        "cegas-pdf",
		Description: "printed invoice, dd/mm/yyyy dates",
		Format:      domain.SourceFormatPDF,
		Numbers:     normalize.BrazilianNumbers,
		Rules:       cegasTextRules(),
	}
}

// NFeXMLText applies the printed-invoice patterns to flattened XML text.
func NFeXMLText() *RuleSet {
	return &RuleSet{
		Name:        "nfe-xml-text",
		Description: "flattened XML text read with the printed invoice patterns",
		Format:      domain.SourceFormatXML,
		Numbers:     normalize.BrazilianNumbers,
		Rules:       cegasTextRules(),
	}
}

func cegasTextRules() []FieldRule {
	return []FieldRule{
		{Field: domain.FieldTaxID, Candidates: []Candidate{
			Pattern(`(\d{2}\.\d{3}\.?\d{3}\/?\d{4}\-?\s?\d{2})\s+\d{2}\/\d{2}\/\d{4}`),
		}},
		{Field: domain.FieldTotalAmount, Candidates: []Candidate{
			Pattern(`-?(\d+\.?\d+\,\d{2})\s\d{2}\/\d{2}\/\d{4}`),
		}},
		{Field: domain.FieldTotalVolume, Candidates: []Candidate{
			Pattern(`M3\s(\d+\.?\,?\d+\.?\,?\d+)\s?`),
		}},
		{Field: domain.FieldIssueDate, Candidates: []Candidate{
			Pattern(`[A]\s(\d{2}\/\d{2}\/\d{4})`),
		}},
		{Field: domain.FieldPeriodStart, Candidates: []Candidate{
			Pattern(`DE\s(\d{2}\/\d{2}\/\d{4})\s`),
		}},
		{Field: domain.FieldPeriodEnd, Candidates: []Candidate{
			Pattern(`[A-a]\s(\d{2}\/\d{2}\/\d{4})`),
		}},
		{Field: domain.FieldInvoiceNumber, Candidates: []Candidate{
			Pattern(`Nº\s(\d+\.?\d+\.?\d+)\s`),
		}},
		{Field: domain.FieldTaxAmount, Candidates: []Candidate{
			Pattern(`\,\d+\s(\d+\d+\,\.?\d+)\s[0]`),
		}},
		{Field: domain.FieldCorrectionFactor, Candidates: []Candidate{
			Pattern(`R\d+\s(\d+)\s*`),
			Pattern(`T\d+\s(\d+)\s*`),
		}},
	}
}

// CegasPDFLegacy is the older printed layout with dotted dates and the
// calorific reading embedded in the meter code.
func CegasPDFLegacy() *RuleSet {
	dottedRun := `\d{2}\.\d{2}\.\d{4}`
	return &RuleSet{
		Name:        "cegas-pdf-legacy",
		Description: "older printed invoice, dd.mm.yyyy dates",
		Format:      domain.SourceFormatPDF,
		Numbers:     normalize.BrazilianNumbers,
		Rules: []FieldRule{
			{Field: domain.FieldTaxID, Candidates: []Candidate{
				Pattern(`\d{2}\.\d{3}\.?\d{3}\/?\d{4}\-?\s?\d{2}`),
			}},
			{Field: domain.FieldTotalAmount, Candidates: []Candidate{
				Pattern(`R\$\s(\d+\.?\d+\,\d{2})\s`),
			}},
			{Field: domain.FieldTotalVolume, Candidates: []Candidate{
				Pattern(`Total\s(\d+\.?\,?\d+\.?\,?\d+)\s`),
			}},
			{Field: domain.FieldIssueDate, Candidates: []Candidate{
				Pattern(`apresentação\s(` + dottedRun + `)`),
			}},
			{Field: domain.FieldPeriodStart, Candidates: []Candidate{
				Pattern(dottedRun + dottedRun + `(` + dottedRun + `)` + dottedRun),
			}},
			{Field: domain.FieldPeriodEnd, Candidates: []Candidate{
				Pattern(dottedRun + `(` + dottedRun + `)` + dottedRun),
			}},
			{Field: domain.FieldInvoiceNumber, Candidates: []Candidate{
				Pattern(`\s(\d{3}\.\d{3}\.\d{3})\s`),
			}},
			{Field: domain.FieldTaxAmount, Candidates: []Candidate{
				Pattern(`ICMS\s?R\$\s(\d+\.?\d+\,\d{2})\s`),
			}},
			{Field: domain.FieldCorrectionFactor, Candidates: []Candidate{
				Pattern(`[A-Z]\d{9}(\d{4})\d+`),
			}},
		},
	}
}

// NFeXML reads an NF-e through namespace-qualified lookups. The calorific
// reading falls back from the fuel block to free-text blocks to a scan of
// the whole document.
func NFeXML() *RuleSet {
	const infCpl = `//nfe:infAdic/nfe:infCpl`
	brazilian := normalize.BrazilianNumbers
	return &RuleSet{
		Name:        "nfe-xml",
		Description: "NF-e structured lookups",
		Format:      domain.SourceFormatXML,
		Numbers:     normalize.CanonicalNumbers,
		Root:        compile(`//nfe:infNFe`),
		Rules: []FieldRule{
			{Field: domain.FieldTaxID, Candidates: []Candidate{
				Path(`//nfe:emit/nfe:CNPJ`),
			}},
			{Field: domain.FieldTotalAmount, Candidates: []Candidate{
				Path(`//nfe:total/nfe:ICMSTot/nfe:vNF`),
			}},
			{Field: domain.FieldTotalVolume, Candidates: []Candidate{
				Path(`//nfe:det/nfe:prod/nfe:qCom`),
			}},
			{Field: domain.FieldIssueDate, Candidates: []Candidate{
				Path(`//nfe:ide/nfe:dhEmi`, DateOnly()),
				Path(`//nfe:ide/nfe:dEmi`),
			}},
			{Field: domain.FieldPeriodStart, Candidates: []Candidate{
				Path(infCpl, Token(2), Accept(slashDate)),
				PathPattern(infCpl, `(\d{2}/\d{2}/\d{4})`),
			}},
			{Field: domain.FieldPeriodEnd, Candidates: []Candidate{
				Path(infCpl, Token(4), Accept(slashDate)),
				PathPattern(infCpl, `\d{2}/\d{2}/\d{4}\D+(\d{2}/\d{2}/\d{4})`),
			}},
			{Field: domain.FieldInvoiceNumber, Candidates: []Candidate{
				Path(`//nfe:ide/nfe:nNF`),
			}},
			{Field: domain.FieldTaxAmount, Candidates: []Candidate{
				Path(`//nfe:total/nfe:ICMSTot/nfe:vICMS`),
			}},
			{
				Field: domain.FieldCorrectionFactor,
				// Readings are typed by hand into the free-text blocks.
				Numbers: &brazilian,
				Candidates: []Candidate{
					SubtreeMarker(`//nfe:det/nfe:prod/nfe:comb`, pcsMarker, anyNumber),
					PathPattern(`//nfe:det/nfe:infAdProd`, pcsLabelled),
					PathPattern(infCpl, pcsLabelled),
					TreeScan(pcsMarker, anyNumber),
				},
			},
		},
	}
}

var distributorTag = regexp.MustCompile(`_GN_([A-ZÁ]+)_`)

// DistributorTag returns the distributor encoded in file names such as
// "2024_GN_CEGAS_0123.pdf".
func DistributorTag(filename string) (string, bool) {
	m := distributorTag.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return m[1], true
}
