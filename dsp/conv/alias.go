package conv

import "unsafe"

// overlaps reports whether x and y share any element of memory.
func overlaps(x, y []float64) bool {
	if len(x) == 0 || len(y) == 0 {
		return false
	}
	const size = unsafe.Sizeof(float64(0))
	xStart := uintptr(unsafe.Pointer(&x[0]))
	yStart := uintptr(unsafe.Pointer(&y[0]))
	xEnd := xStart + uintptr(len(x))*size
	yEnd := yStart + uintptr(len(y))*size
	return xStart < yEnd && yStart < xEnd
}
