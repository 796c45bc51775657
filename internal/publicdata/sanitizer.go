package publicdata

// Sanitize projects a raw record onto the entity's allowlist. It is pure
// and total: nil records yield an empty map, unexpected fields are dropped,
// and applying it twice equals applying it once.
func Sanitize(entity EntityType, record map[string]any) map[string]any {
	out := make(map[string]any)
	if len(record) == 0 {
		return out
	}

	for _, column := range ContractFor(entity).Allow {
		if value, ok := record[column]; ok {
			out[column] = value
		}
	}
	return out
}

// SanitizeAll applies Sanitize to each record in a slice.
func SanitizeAll(entity EntityType, records []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out = append(out, Sanitize(entity, record))
	}
	return out
}
