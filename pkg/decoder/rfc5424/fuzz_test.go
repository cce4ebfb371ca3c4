package rfc5424

import "testing"

func FuzzDecode(f *testing.F) {
	f.Add([]byte("<165>1 2003-10-11T22:14:15.003Z mymachine.example.com evntslog - ID47 [exampleSDID@32473 iut=\"3\"] An application event log entry"))
	f.Add([]byte("<0>1 - - - - - -"))
	f.Add(append([]byte{0xEF, 0xBB, 0xBF}, []byte("<1>1 - h a p m -")...))
	f.Add([]byte(""))
	f.Add([]byte("no leading angle bracket"))

	d := New()
	f.Fuzz(func(t *testing.T, raw []byte) {
		_, _ = d.Decode(raw)
	})
}
