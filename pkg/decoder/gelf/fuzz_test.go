package gelf

import "testing"

func FuzzDecode(f *testing.F) {
	f.Add([]byte(`{"version":"1.1","host":"example.org","short_message":"hello","timestamp":1385053862.3072,"level":1,"_user_id":9001,"_some_info":"foo"}`))
	f.Add([]byte(`{"short_message":"x"}`))
	f.Add([]byte(`{"host":"h","_list":[1,2,3]}`))
	f.Add([]byte(`not json`))
	f.Add([]byte(``))

	d := New()
	f.Fuzz(func(t *testing.T, raw []byte) {
		_, _ = d.Decode(raw)
	})
}
