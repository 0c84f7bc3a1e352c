package employee

// Employee is the directory entry used to label summaries.
type Employee struct {
	CorpID      string
	CompanyName string
	EmpCode     string
	Name        string
	Designation string
	Department  string
}
