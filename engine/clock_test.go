package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-points/engine"
)

func TestParseClock_AcceptedForms(t *testing.T) {
	cases := []struct {
		in   string
		want engine.Clock
	}{
		{"730", engine.Clock{Hour: 7, Minute: 30}},
		{"7:30", engine.Clock{Hour: 7, Minute: 30}},
		{"5pm", engine.Clock{Hour: 17}},
		{"19:05", engine.Clock{Hour: 19, Minute: 5}},
		{"0", engine.Clock{}},
		{"07", engine.Clock{Hour: 7}},
		{"2359", engine.Clock{Hour: 23, Minute: 59}},
		{"12am", engine.Clock{}},
		{"12pm", engine.Clock{Hour: 12}},
		{"  9 AM ", engine.Clock{Hour: 9}},
		{"1130pm", engine.Clock{Hour: 23, Minute: 30}},
		{"13pm", engine.Clock{Hour: 13}},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := engine.ParseClock(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseClock_Rejected(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "7h30", "12345", "24", "2400", "760", "7:60", "-1", "pm"} {
		t.Run(in, func(t *testing.T) {
			_, err := engine.ParseClock(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, engine.ErrInvalidTimeFormat), "error should wrap ErrInvalidTimeFormat: %v", err)

			var clockErr *engine.ClockError
			require.True(t, errors.As(err, &clockErr))
			assert.Equal(t, in, clockErr.Input)
		})
	}
}

func TestClock_String(t *testing.T) {
	assert.Equal(t, "07:05", engine.Clock{Hour: 7, Minute: 5}.String())
	assert.Equal(t, "23:59", engine.MustParseClock("2359").String())
	assert.Equal(t, 19*60+5, engine.MustParseClock("19:05").MinuteOfDay())
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0:00", engine.FormatMinutes(0))
	assert.Equal(t, "4:00", engine.FormatMinutes(240))
	assert.Equal(t, "10:05", engine.FormatMinutes(605))
	assert.Equal(t, "-0:30", engine.FormatMinutes(-30))
}
