package color

var reference = []struct {
	name string
	rgb  [3]float64
}{
	{"red", [3]float64{255, 0, 0}},
	{"green", [3]float64{0, 255, 0}},
	{"blue", [3]float64{0, 0, 255}},
	{"yellow", [3]float64{255, 255, 0}},
	{"cyan", [3]float64{0, 255, 255}},
	{"magenta", [3]float64{255, 0, 255}},
	{"white", [3]float64{255, 255, 255}},
	{"black", [3]float64{0, 0, 0}},
	{"gray", [3]float64{128, 128, 128}},
	{"orange", [3]float64{255, 165, 0}},
	{"brown", [3]float64{165, 42, 42}},
	{"beige", [3]float64{245, 245, 220}},
	{"pink", [3]float64{255, 192, 203}},
	{"purple", [3]float64{128, 0, 128}},
}

// Nearest names c after the closest reference color by Euclidean RGB distance.
func Nearest(c RGB) string {
	p := [3]float64{float64(c[0]), float64(c[1]), float64(c[2])}
	best, bestD := "unknown", -1.0
	for _, ref := range reference {
		d := sqDist(p, ref.rgb)
		if bestD < 0 || d < bestD {
			best, bestD = ref.name, d
		}
	}
	return best
}
