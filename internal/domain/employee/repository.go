package employee

import "context"

type EmployeeRepository interface {
	// GetDirectory returns the employees among empCodes keyed by code. Codes
	// missing from the directory are absent from the map.
	GetDirectory(ctx context.Context, corpID, companyName string, empCodes []string) (map[string]Employee, error)
}
