package extract_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/acquire"
	"faturas/internal/domain"
	"faturas/internal/extract"
	"faturas/internal/normalize"
)

const cegasText = "CEGAS COMPANHIA DE GAS Nº 1.234.567 CNPJ 12.345.678/0001-90 15/03/2024 " +
	"LEITURA ATUAL 29/02/2024 PERIODO DE 01/02/2024 ATE EMISSAO A 05/03/2024 " +
	"CONSUMO M3 1.234,567 TOTAL 4.321,09 15/03/2024 ICMS 18,00 777,78 0,00 PCS R123 47000 FIM"

func textSource(text string) *acquire.Source {
	return &acquire.Source{Path: "fatura.pdf", Format: domain.SourceFormatPDF, Text: text}
}

func TestCegasPDF_Extract(t *testing.T) {
	fields := extract.CegasPDF().Extract(textSource(cegasText))

	assert.Equal(t, domain.Fields{
		domain.FieldTaxID:            "12.345.678/0001-90",
		domain.FieldTotalAmount:      "4.321,09",
		domain.FieldTotalVolume:      "1.234,567",
		domain.FieldIssueDate:        "05/03/2024",
		domain.FieldPeriodStart:      "01/02/2024",
		domain.FieldPeriodEnd:        "29/02/2024",
		domain.FieldInvoiceNumber:    "1.234.567",
		domain.FieldTaxAmount:        "777,78",
		domain.FieldCorrectionFactor: "47000",
	}, fields)
}

func TestCegasPDF_SecondCandidate(t *testing.T) {
	fields := extract.CegasPDF().Extract(textSource("MEDIDOR T456 9400 FIM"))

	assert.Equal(t, "9400", fields[domain.FieldCorrectionFactor])
}

func TestCegasPDF_AbsentFieldsOmitted(t *testing.T) {
	fields := extract.CegasPDF().Extract(textSource("DOCUMENTO SEM DADOS"))

	assert.Empty(t, fields)
	_, ok := fields[domain.FieldInvoiceNumber]
	assert.False(t, ok)
}

func TestExtract_Deterministic(t *testing.T) {
	rs := extract.CegasPDF()
	src := textSource(cegasText)

	assert.Equal(t, rs.Extract(src), rs.Extract(src))
}

func TestExtract_FirstMatchWins(t *testing.T) {
	rs := &extract.RuleSet{
		Name: "test",
		Rules: []extract.FieldRule{
			{Field: domain.FieldInvoiceNumber, Candidates: []extract.Candidate{
				extract.Pattern(`NF\s(\d+)`),
				extract.Pattern(`\d{3}`),
			}},
		},
	}

	assert.Equal(t, "42", rs.Extract(textSource("NF 42 NF 43 999"))[domain.FieldInvoiceNumber])
	// No group: the whole match is used.
	assert.Equal(t, "999", rs.Extract(textSource("nota 999"))[domain.FieldInvoiceNumber])
}

func TestCegasPDFLegacy_Extract(t *testing.T) {
	text := "CNPJ 12.345.678/0001-90 FATURA 001.234.567 VALOR R$ 4.321,09 ICMS R$ 777,78 " +
		"Consumo Total 1.234,567 m3 Data de apresentação 05.03.2024 MEDIDOR A123456789952012345"

	fields := extract.CegasPDFLegacy().Extract(textSource(text))

	assert.Equal(t, "12.345.678/0001-90", fields[domain.FieldTaxID])
	assert.Equal(t, "4.321,09", fields[domain.FieldTotalAmount])
	assert.Equal(t, "777,78", fields[domain.FieldTaxAmount])
	assert.Equal(t, "1.234,567", fields[domain.FieldTotalVolume])
	assert.Equal(t, "05.03.2024", fields[domain.FieldIssueDate])
	assert.Equal(t, "001.234.567", fields[domain.FieldInvoiceNumber])
	assert.Equal(t, "9520", fields[domain.FieldCorrectionFactor])
}

const nfeTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe23240307012345000190550010000045211000045210" versao="4.00">
      <ide><nNF>4521</nNF><dhEmi>2024-03-05T10:15:00-03:00</dhEmi></ide>
      <emit><CNPJ>07012345000190</CNPJ><xNome>CEGAS</xNome></emit>
      <det nItem="1">
        <prod><xProd>GAS NATURAL</xProd><qCom>1234.5670</qCom>%s</prod>
        %s
      </det>
      <total><ICMSTot><vICMS>777.78</vICMS><vNF>4321.09</vNF></ICMSTot></total>
      <infAdic><infCpl>%s</infCpl>%s</infAdic>
    </infNFe>
  </NFe>
</nfeProc>`

type nfeParts struct {
	comb, infAdProd, infCpl, obs string
}

func nfeSource(t *testing.T, p nfeParts) *acquire.Source {
	t.Helper()
	if p.infCpl == "" {
		p.infCpl = "PERIODO DE 01/02/2024 A 29/02/2024 LEITURA REAL"
	}
	path := filepath.Join(t.TempDir(), "nota.xml")
	content := fmt.Sprintf(nfeTemplate, p.comb, p.infAdProd, p.infCpl, p.obs)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	src, err := acquire.ReadXML(path)
	require.NoError(t, err)
	return src
}

func TestNFeXML_StructuredFields(t *testing.T) {
	src := nfeSource(t, nfeParts{
		comb: `<comb><cProdANP>220101001</cProdANP><descANP>GAS NATURAL</descANP><PCS>9520</PCS></comb>`,
	})
	rs := extract.NFeXML()

	require.NoError(t, rs.Check(src))
	fields := rs.Extract(src)

	assert.Equal(t, domain.Fields{
		domain.FieldTaxID:            "07012345000190",
		domain.FieldTotalAmount:      "4321.09",
		domain.FieldTotalVolume:      "1234.5670",
		domain.FieldIssueDate:        "2024-03-05",
		domain.FieldPeriodStart:      "01/02/2024",
		domain.FieldPeriodEnd:        "29/02/2024",
		domain.FieldInvoiceNumber:    "4521",
		domain.FieldTaxAmount:        "777.78",
		domain.FieldCorrectionFactor: "9520",
	}, fields)
	assert.Contains(t, rs.Trace(src)[domain.FieldCorrectionFactor], "subtree")
}

func TestNFeXML_PCSFromProductInfo(t *testing.T) {
	src := nfeSource(t, nfeParts{infAdProd: `<infAdProd>PCS: 9.870 kcal/m3</infAdProd>`})
	rs := extract.NFeXML()

	assert.Equal(t, "9.870", rs.Extract(src)[domain.FieldCorrectionFactor])
	assert.Contains(t, rs.Trace(src)[domain.FieldCorrectionFactor], "infAdProd")
}

func TestNFeXML_PCSOnlyInAdditionalInfo(t *testing.T) {
	src := nfeSource(t, nfeParts{infCpl: "PERIODO DE 01/02/2024 A 29/02/2024 PCS 47000"})
	rs := extract.NFeXML()

	fields := rs.Extract(src)
	assert.Equal(t, "47000", fields[domain.FieldCorrectionFactor])
	assert.Contains(t, rs.Trace(src)[domain.FieldCorrectionFactor], "infCpl")

	res := normalize.NewNormalizer(normalize.DefaultPCSDivisor).Normalize(fields, rs.NumberFormat)
	assert.Equal(t, "5.0000", res.Values[domain.FieldCorrectionFactor])
	assert.Equal(t, "4321.09", res.Values[domain.FieldTotalAmount])
}

func TestNFeXML_PCSFromTreeScan(t *testing.T) {
	src := nfeSource(t, nfeParts{
		obs: `<obsCont xCampo="Qualidade"><xTexto>PCS MEDIO 9400 KCAL</xTexto></obsCont>`,
	})
	rs := extract.NFeXML()

	assert.Equal(t, "9400", rs.Extract(src)[domain.FieldCorrectionFactor])
	assert.Contains(t, rs.Trace(src)[domain.FieldCorrectionFactor], "scan")
}

func TestNFeXML_PCSNumberFromMarkedText(t *testing.T) {
	src := nfeSource(t, nfeParts{
		comb: `<comb><cProdANP>220101001</cProdANP><xObs>PCS MEDIO 9400 KCAL</xObs></comb>`,
	})
	rs := extract.NFeXML()

	fields := rs.Extract(src)
	assert.Equal(t, "9400", fields[domain.FieldCorrectionFactor])
	assert.Contains(t, rs.Trace(src)[domain.FieldCorrectionFactor], "subtree")

	res := normalize.NewNormalizer(normalize.DefaultPCSDivisor).Normalize(fields, rs.NumberFormat)
	assert.Equal(t, "1.0000", res.Values[domain.FieldCorrectionFactor])
}

func TestNFeXML_MarkedTextWithoutNumberFallsThrough(t *testing.T) {
	src := nfeSource(t, nfeParts{
		comb:   `<comb><cProdANP>220101001</cProdANP><xObs>PCS A APURAR</xObs></comb>`,
		infCpl: "PERIODO DE 01/02/2024 A 29/02/2024 PCS 47000",
	})
	rs := extract.NFeXML()

	assert.Equal(t, "47000", rs.Extract(src)[domain.FieldCorrectionFactor])
	assert.Contains(t, rs.Trace(src)[domain.FieldCorrectionFactor], "infCpl")
}

func TestNFeXML_NoPCS(t *testing.T) {
	src := nfeSource(t, nfeParts{})

	fields := extract.NFeXML().Extract(src)

	assert.False(t, fields.Has(domain.FieldCorrectionFactor))
	assert.True(t, fields.Has(domain.FieldInvoiceNumber))
}

func TestNFeXML_PeriodFallsBackToDatePattern(t *testing.T) {
	src := nfeSource(t, nfeParts{infCpl: "Periodo de leitura: 01/02/2024 a 29/02/2024"})

	fields := extract.NFeXML().Extract(src)

	assert.Equal(t, "01/02/2024", fields[domain.FieldPeriodStart])
	assert.Equal(t, "29/02/2024", fields[domain.FieldPeriodEnd])
}

func TestNFeXML_CheckRejectsOtherXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<pedido><numero>1</numero></pedido>`), 0o644))
	src, err := acquire.ReadXML(path)
	require.NoError(t, err)

	assert.ErrorIs(t, extract.NFeXML().Check(src), domain.ErrNotFiscalDocument)
}

func TestRuleSet_NumberFormat(t *testing.T) {
	rs := extract.NFeXML()

	assert.Equal(t, normalize.CanonicalNumbers, rs.NumberFormat(domain.FieldTotalAmount))
	assert.Equal(t, normalize.BrazilianNumbers, rs.NumberFormat(domain.FieldCorrectionFactor))
}

func TestRegistry(t *testing.T) {
	r := extract.DefaultRegistry()

	assert.Equal(t, []string{"cegas-pdf", "cegas-pdf-legacy", "nfe-xml", "nfe-xml-text"}, r.Names())

	rs, err := r.Lookup("nfe-xml")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFormatXML, rs.Format)

	_, err = r.Lookup("comgas-pdf")
	assert.ErrorContains(t, err, "unknown rule set")
	assert.Nil(t, r.Get("comgas-pdf"))
}

func TestDistributorTag(t *testing.T) {
	tag, ok := extract.DistributorTag("2024_GN_CEGÁS_0123.pdf")
	assert.True(t, ok)
	assert.Equal(t, "CEGÁS", tag)

	_, ok = extract.DistributorTag("fatura.pdf")
	assert.False(t, ok)
}
