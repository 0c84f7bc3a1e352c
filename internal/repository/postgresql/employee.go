package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetDirectory implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetDirectory(ctx context.Context, corpID, companyName string, empCodes []string) (map[string]employee.Employee, error) {
	directory := make(map[string]employee.Employee, len(empCodes))
	if len(empCodes) == 0 {
		return directory, nil
	}

	q := GetQuerier(ctx, e.db)

	query := `
		SELECT corp_id, company_name, emp_code, emp_name,
			   COALESCE(designation, ''), COALESCE(department, '')
		FROM employees
		WHERE corp_id = $1 AND company_name = $2 AND emp_code = ANY($3)
	`

	rows, err := q.Query(ctx, query, corpID, companyName, empCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee directory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(&emp.CorpID, &emp.CompanyName, &emp.EmpCode, &emp.Name, &emp.Designation, &emp.Department); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		directory[emp.EmpCode] = emp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return directory, nil
}
