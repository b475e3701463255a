package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// StrFromPtr returns *p when set, otherwise current. Used to apply partial updates.
func StrFromPtr(current string, p *string) string {
	if p != nil {
		return *p
	}
	return current
}

// Float64FromPtr returns *p when set, otherwise current.
func Float64FromPtr(current float64, p *float64) float64 {
	if p != nil {
		return *p
	}
	return current
}

// IntFromPtr returns *p when set, otherwise current.
func IntFromPtr(current int, p *int) int {
	if p != nil {
		return *p
	}
	return current
}
