package cli

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// BuildPayload turns an exported file into an import body.
//
// Without rowsPath the file already is the body; unitID and month, when
// set, overwrite its header fields. With rowsPath the rows are picked out
// of an arbitrary export (e.g. "$.sheets[0].rows") and wrapped in a cash
// import envelope.
func BuildPayload(raw []byte, kind, unitID, month, rowsPath string) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("input is not JSON: %w", err)
	}
	cash := kind == "cash_in" || kind == "cash_out"

	if rowsPath != "" {
		if !cash {
			return nil, fmt.Errorf("-rows applies to cash_in and cash_out imports only")
		}
		rows, err := selectRows(doc, rowsPath)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]any{
			"unitId":       unitID,
			"periodMonth":  month,
			"transactions": rows,
		})
	}

	body, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("input must be a JSON object, or use -rows to select the rows")
	}
	if unitID != "" {
		body["unitId"] = unitID
	}
	if month != "" && cash {
		body["periodMonth"] = month
	}
	return json.Marshal(body)
}

// selectRows evaluates path and insists on a list of objects
func selectRows(doc any, path string) ([]any, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", path, err)
	}
	rows, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%q selects %T, want a list of rows", path, val)
	}
	// a path ending in a single-element selector wraps the list once more
	if len(rows) == 1 {
		if inner, ok := rows[0].([]any); ok {
			rows = inner
		}
	}
	for i, r := range rows {
		if _, ok := r.(map[string]any); !ok {
			return nil, fmt.Errorf("row %d selected by %q is %T, want an object", i, path, r)
		}
	}
	return rows, nil
}
