package ui

// hit reports whether the cursor (mx, my) lies inside the rectangle.
func hit(mx, my int, x, y, w, h float64) bool {
	fx, fy := float64(mx), float64(my)
	return fx >= x && fx <= x+w && fy >= y && fy <= y+h
}
