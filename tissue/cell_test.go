package tissue

import "testing"

func TestCellAge(t *testing.T) {
	cases := []struct {
		birth, iteration, want int
	}{
		{0, 0, 0},
		{0, 10, 10},
		{5, 5, 0},
		{5, 12, 7},
	}
	for _, c := range cases {
		cell := Cell{Birth: c.birth}
		if got := cell.Age(c.iteration); got != c.want {
			t.Errorf("Age(birth=%d, iteration=%d) = %d, want %d", c.birth, c.iteration, got, c.want)
		}
	}
}
