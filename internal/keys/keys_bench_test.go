package keys

import "testing"

func BenchmarkFor(b *testing.B) {
	b.ReportAllocs()
	var sink Tag
	for i := 0; i < b.N; i++ {
		sink = For("countdown")
	}
	_ = sink
}
