package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawPunch_Normalize(t *testing.T) {
	p, err := RawPunch{ID: "1", EmpCode: " E1 ", Date: "5/3/2024", AttendanceStatus: "present"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "E1", p.EmpCode)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), p.Date)
	assert.Equal(t, StatusPresent, p.AttendanceStatus)

	for _, date := range []string{"2024/03/05", "05-03-2024", "5 March 2024", "31/02/2024"} {
		_, err := RawPunch{ID: "2", EmpCode: "E1", Date: date}.Normalize()
		assert.ErrorIs(t, err, ErrInvalidPunchDate, date)
	}
}
