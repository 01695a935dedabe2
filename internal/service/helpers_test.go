package service_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"faturas/internal/extract"
	"faturas/internal/normalize"
	"faturas/internal/port"
	"faturas/internal/service"
	"faturas/internal/validator"
)

const nfeDoc = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe23240307012345000190550010000045211000045210" versao="4.00">
      <ide>%s<dhEmi>2024-03-05T10:15:00-03:00</dhEmi></ide>
      <emit><CNPJ>07012345000190</CNPJ><xNome>CEGAS</xNome></emit>
      <det nItem="1">
        <prod><xProd>GAS NATURAL</xProd><qCom>1234.5670</qCom>
          <comb><cProdANP>220101001</cProdANP><PCS>47000</PCS></comb></prod>
      </det>
      <total><ICMSTot><vICMS>777.78</vICMS><vNF>%s</vNF></ICMSTot></total>
      <infAdic><infCpl>PERIODO DE 01/02/2024 A 29/02/2024 LEITURA REAL</infCpl></infAdic>
    </infNFe>
  </NFe>
</nfeProc>`

// nfe renders an NF-e; an empty number omits the nNF element.
func nfe(number, total string) string {
	nNF := ""
	if number != "" {
		nNF = "<nNF>" + number + "</nNF>"
	}
	return fmt.Sprintf(nfeDoc, nNF, total)
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newService(t *testing.T, ledger port.Ledger, archiver port.DocumentArchiver, cfg service.IngestConfig) service.IngestService {
	t.Helper()
	rules := extract.DefaultRegistry()
	pdf, err := rules.Lookup("cegas-pdf")
	require.NoError(t, err)
	xml, err := rules.Lookup("nfe-xml")
	require.NoError(t, err)

	return service.NewIngestService(
		[]*extract.RuleSet{pdf, xml},
		normalize.NewNormalizer(normalize.DefaultPCSDivisor),
		validator.NewEngine(validator.DefaultRegistry(), zap.NewNop()),
		ledger,
		archiver,
		cfg,
		zap.NewNop(),
	)
}
