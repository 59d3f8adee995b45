// seed carga o actualiza productos del catálogo a partir de una planilla CSV.
//
// Uso: go run ./cmd/seed [-charset latin1] productos.csv
//
// Columnas (separador ';' o ','): nombre, cantidad, precioUnidad, combo2..combo5.
// La primera fila es el encabezado. Un producto con el mismo nombre se actualiza.
// Con STORAGE_DRIVER=postgres escribe en la base; si no, imprime el catálogo resultante.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/malexa-pos/internal/application/catalog"
	"github.com/jhoicas/malexa-pos/internal/application/dto"
	"github.com/jhoicas/malexa-pos/internal/application/usecase"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/kvstore"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/storage"
	"github.com/jhoicas/malexa-pos/pkg/config"
	"github.com/jhoicas/malexa-pos/pkg/logger"
)

func main() {
	charset := flag.String("charset", "utf-8", "codificación del CSV: utf-8 | latin1 | windows-1252")
	flag.Parse()
	csvPath := "productos.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := decodeReader(f, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Codificación: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseRows(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var kv repository.KeyValueStore
	if cfg.Storage.Driver == config.StoragePostgres {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema kv_entries")
		}
		kv = postgres.NewKVStore(pool, storage.KeySales)
	} else {
		kv = kvstore.New()
	}

	created, updated, err := importRows(ctx, kv, rows, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar: %v\n", err)
		os.Exit(1)
	}

	if cfg.Storage.Driver != config.StoragePostgres {
		raw, _, err := kv.Get(ctx, storage.KeyProducts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(raw)
		fmt.Println()
	}
	fmt.Fprintf(os.Stderr, "Importado %s: %d nuevos, %d actualizados\n", csvPath, created, updated)
}

// decodeReader envuelve r para leer planillas exportadas en Latin-1 o Windows-1252.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado %q", charset)
}

// parseRows lee el CSV y arma un request por fila. Celdas vacías dejan la opción sin precio.
func parseRows(r io.Reader) ([]dto.ProductRequest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(raw))
	header, _, _ := strings.Cut(string(raw), "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("el CSV no tiene filas de productos")
	}

	out := make([]dto.ProductRequest, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 3 {
			return nil, fmt.Errorf("fila %d: se esperan al menos nombre, cantidad y precioUnidad", line)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("fila %d: cantidad %q inválida", line, rec[1])
		}
		in := dto.ProductRequest{Name: strings.TrimSpace(rec[0]), Quantity: qty}
		prices := make([]*decimal.Decimal, 5)
		for col := 2; col < len(rec) && col < 7; col++ {
			p, err := parsePrice(rec[col])
			if err != nil {
				return nil, fmt.Errorf("fila %d, columna %d: %w", line, col+1, err)
			}
			prices[col-2] = p
		}
		in.UnitPrice = prices[0]
		in.Combo2, in.Combo3, in.Combo4, in.Combo5 = prices[1], prices[2], prices[3], prices[4]
		for n := 5; n >= 2; n-- {
			if in.ComboPrice(n) != nil {
				in.ComboMax = n
				break
			}
		}
		out = append(out, in)
	}
	return out, nil
}

// parsePrice acepta "1234.5", "1234,5" y "$ 1.234,50".
func parsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return nil, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("precio %q inválido", s)
	}
	return &d, nil
}

// importRows crea o actualiza cada producto por nombre, con las mismas validaciones del panel.
func importRows(ctx context.Context, kv repository.KeyValueStore, rows []dto.ProductRequest, log *logger.Logger) (created, updated int, err error) {
	productRepo := storage.NewProductRepository(kv)
	snapshot := catalog.NewSnapshot(productRepo, storage.NewSaleRepository(kv), log)
	if err := snapshot.ReloadProducts(ctx); err != nil {
		return 0, 0, err
	}
	uc := usecase.NewProductUseCase(productRepo, snapshot, nil)

	for _, in := range rows {
		var existing int64
		for _, p := range snapshot.Products() {
			if strings.EqualFold(p.Name, in.Name) {
				existing = p.ID
				break
			}
		}
		if existing != 0 {
			if _, err := uc.Update(ctx, existing, in); err != nil {
				return created, updated, fmt.Errorf("%s: %w", in.Name, err)
			}
			updated++
			continue
		}
		if _, err := uc.Create(ctx, in); err != nil {
			return created, updated, fmt.Errorf("%s: %w", in.Name, err)
		}
		created++
	}
	return created, updated, nil
}
