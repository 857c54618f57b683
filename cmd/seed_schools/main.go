// seed_schools carga el directorio de escuelas y grupos de compras desde un XML
// (típicamente exportado en ISO-8859-1) al almacenamiento configurado.
//
// Uso: go run ./cmd/seed_schools [ruta/escuelas.xml]
// Por defecto busca escuelas.xml en el directorio actual.
//
//	<escuelas>
//	  <escuela id="esc-001" nombre="Escuela Nº 1" grupo="norte"/>
//	</escuelas>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/application/school"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/storage"
	"github.com/jhoicas/gestion-escolar/pkg/config"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

type seedRow struct {
	id  string
	req dto.RegisterSchoolRequest
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToUpper(charset) {
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "WINDOWS-1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	}
	return input, nil
}

// parseSchools lee los elementos <escuela> de la raíz; descarta filas sin id o nombre
// y conserva la última aparición de cada id.
func parseSchools(r io.Reader) ([]seedRow, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("leer XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("documento sin raíz")
	}

	idx := make(map[string]int)
	var rows []seedRow
	for _, e := range root.SelectElements("escuela") {
		id := strings.TrimSpace(e.SelectAttrValue("id", ""))
		nombre := strings.TrimSpace(e.SelectAttrValue("nombre", ""))
		if id == "" || nombre == "" {
			continue
		}
		row := seedRow{id: id, req: dto.RegisterSchoolRequest{
			Name:              nombre,
			PurchasingGroupID: strings.TrimSpace(e.SelectAttrValue("grupo", "")),
		}}
		if i, ok := idx[id]; ok {
			rows[i] = row
			continue
		}
		idx[id] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}

func main() {
	xmlPath := "escuelas.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed_schools")

	f, err := os.Open(xmlPath)
	if err != nil {
		log.Fatal().Err(err).Str("archivo", xmlPath).Msg("abrir XML")
	}
	defer f.Close()

	rows, err := parseSchools(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer escuelas")
	}

	ctx := context.Background()
	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer stores.Close()

	dir := school.NewDirectory(stores.Schools)
	groups := make(map[string]struct{})
	for _, row := range rows {
		if _, err := dir.Register(ctx, row.id, row.req); err != nil {
			log.Error().Err(err).Str("escuela", row.id).Msg("registrar escuela")
			continue
		}
		if row.req.PurchasingGroupID != "" {
			groups[row.req.PurchasingGroupID] = struct{}{}
		}
	}

	log.Info().Int("escuelas", len(rows)).Int("grupos", len(groups)).Msg("directorio cargado")
}
