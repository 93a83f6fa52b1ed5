package results

// Table is an ordered set of rows with named columns. Cells keep their JSON types:
// numbers are json.Number, nested objects are map[string]any, missing cells are nil.
type Table struct {
	Field   string   `json:"field"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// valueColumn names the single column of a table built from scalars.
const valueColumn = "value"

// ExtractField converts inference_result.<field> of a custom output document into a Table.
func ExtractField(doc []byte, field string) (Table, error) {
	root, err := decodeOrdered(doc)
	if err != nil {
		return Table{}, MalformedManifestError{Reason: "invalid JSON", Err: err}
	}
	inference := asObject(root).child("inference_result")
	if inference == nil {
		return Table{}, MalformedManifestError{Reason: "inference_result missing or not an object"}
	}
	value, ok := inference.get(field)
	if !ok {
		return Table{}, FieldNotFoundError{Field: field, Available: inference.keys}
	}
	table := toTable(value)
	table.Field = field
	return table, nil
}

// TabularFields lists inference_result fields holding arrays or objects, in document order.
func TabularFields(doc []byte) ([]string, error) {
	root, err := decodeOrdered(doc)
	if err != nil {
		return nil, MalformedManifestError{Reason: "invalid JSON", Err: err}
	}
	inference := asObject(root).child("inference_result")
	if inference == nil {
		return nil, MalformedManifestError{Reason: "inference_result missing or not an object"}
	}
	var fields []string
	for _, key := range inference.keys {
		switch inference.values[key].(type) {
		case []any, *jsonObject:
			fields = append(fields, key)
		}
	}
	return fields, nil
}

func toTable(value any) Table {
	switch v := value.(type) {
	case []any:
		return rowsFromArray(v)
	case *jsonObject:
		return rowsFromObjects([]*jsonObject{v})
	default:
		return Table{Columns: []string{valueColumn}, Rows: [][]any{{plain(v)}}}
	}
}

func rowsFromArray(items []any) Table {
	objects := make([]*jsonObject, 0, len(items))
	for _, item := range items {
		obj, ok := item.(*jsonObject)
		if !ok {
			return scalarRows(items)
		}
		objects = append(objects, obj)
	}
	return rowsFromObjects(objects)
}

// rowsFromObjects takes columns in first-seen order across all rows.
func rowsFromObjects(objects []*jsonObject) Table {
	var columns []string
	seen := map[string]int{}
	for _, obj := range objects {
		for _, key := range obj.keys {
			if _, ok := seen[key]; !ok {
				seen[key] = len(columns)
				columns = append(columns, key)
			}
		}
	}
	rows := make([][]any, 0, len(objects))
	for _, obj := range objects {
		row := make([]any, len(columns))
		for _, key := range obj.keys {
			row[seen[key]] = plain(obj.values[key])
		}
		rows = append(rows, row)
	}
	if columns == nil {
		columns = []string{}
	}
	return Table{Columns: columns, Rows: rows}
}

func scalarRows(items []any) Table {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{plain(item)})
	}
	return Table{Columns: []string{valueColumn}, Rows: rows}
}

func asObject(v any) *jsonObject {
	obj, _ := v.(*jsonObject)
	return obj
}
