package encoder

// csv.go encodes the medium's row collection as a CSV table whose columns
// come from the active mappings, ordered by destination position.

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

const (
	csvPartFilename    = "invoice.csv"
	csvPartContentType = "text/csv"
)

// CSVEncoder renders the medium as a CSV part, appended after any attachments.
type CSVEncoder struct {
	attachments *AttachmentFetcher
}

// NewCSVEncoder creates a CSV encoder using the shared attachment step.
func NewCSVEncoder(attachments *AttachmentFetcher) *CSVEncoder {
	return &CSVEncoder{attachments: attachments}
}

// csvMedium is the expected shape of the working JSON for CSV encoding.
type csvMedium struct {
	Rows []json.RawMessage `json:"Rows"`
}

// csvCell is one ordered property of a row.
type csvCell struct {
	column string
	value  string
}

func (e *CSVEncoder) EncodeMessage(ctx context.Context, dctx *delivery.Context) (*delivery.EncodedInvoice, error) {
	cfg := dctx.ActiveConfiguration()

	var medium csvMedium
	if err := json.Unmarshal(dctx.Medium, &medium); err != nil {
		return nil, delivery.WrapEncodingError(err, "medium is not a row collection")
	}

	// Predefined columns: the mappings ordered by destination position, using
	// the destination header title as the column name.
	mappings := make([]delivery.Mapping, len(cfg.Mappings))
	copy(mappings, cfg.Mappings)
	sort.SliceStable(mappings, func(i, j int) bool {
		return mappings[i].DestinationPosition < mappings[j].DestinationPosition
	})

	columns := make([]string, 0, len(mappings))
	columnIndex := make(map[string]int, len(mappings))
	for _, m := range mappings {
		if _, ok := columnIndex[m.DestinationTitle]; ok {
			continue
		}
		columnIndex[m.DestinationTitle] = len(columns)
		columns = append(columns, m.DestinationTitle)
	}

	// Decode every row up front so columns discovered in later rows still get
	// a header slot. Columns absent from the predefined set are appended in
	// first-seen order.
	rows := make([][]csvCell, 0, len(medium.Rows))
	for i, raw := range medium.Rows {
		cells, err := decodeRow(raw)
		if err != nil {
			return nil, delivery.WrapEncodingError(err, fmt.Sprintf("row %d is malformed", i))
		}
		for _, cell := range cells {
			if _, ok := columnIndex[cell.column]; !ok {
				columnIndex[cell.column] = len(columns)
				columns = append(columns, cell.column)
			}
		}
		rows = append(rows, cells)
	}

	records := make([][]string, 0, len(rows)+1)
	if cfg.Adapter.IncludeHeaderRow {
		records = append(records, columns)
	}
	for _, cells := range rows {
		record := make([]string, len(columns))
		for _, cell := range cells {
			record[columnIndex[cell.column]] = cell.value
		}
		records = append(records, record)
	}

	body, err := writeCSV(records, cfg.Adapter.AlwaysQuote)
	if err != nil {
		return nil, delivery.WrapEncodingError(err, "failed to write CSV")
	}

	invoice := &delivery.EncodedInvoice{}

	attachmentParts, err := e.attachments.FetchParts(ctx, dctx)
	if err != nil {
		return nil, err
	}
	invoice.Append(attachmentParts...)

	part := delivery.NewPart(body, csvPartContentType)
	part.Filename = csvPartFilename
	part.Source = dctx.Medium
	invoice.Append(part)

	return invoice, nil
}

// decodeRow parses one row object into ordered cells.
//
// The row must be a JSON object and every property must be a scalar; a nested
// object or array makes the medium malformed and encoding fails.
func decodeRow(raw json.RawMessage) ([]csvCell, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("row element is not an object")
	}

	var cells []csvCell
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		value, err := scalarString(valTok)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		cells = append(cells, csvCell{column: key, value: value})
	}

	return cells, nil
}

// scalarString renders a decoded JSON scalar token as its CSV cell value.
func scalarString(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	case nil:
		return "", nil
	case json.Delim:
		return "", fmt.Errorf("nested objects and arrays are not allowed in rows")
	default:
		return "", fmt.Errorf("unsupported value type %T", tok)
	}
}

// writeCSV renders the records, optionally quoting every field.
//
// encoding/csv only quotes fields that need it, so the always-quote policy is
// written by hand with the same escaping rules.
func writeCSV(records [][]string, alwaysQuote bool) ([]byte, error) {
	var buf bytes.Buffer

	if !alwaysQuote {
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(records); err != nil {
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	for _, record := range records {
		for i, field := range record {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
		buf.WriteString("\r\n")
	}
	return buf.Bytes(), nil
}
