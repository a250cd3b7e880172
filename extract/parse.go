package extract

import (
	"bufio"
	"bytes"
	"strings"
)

// ParseNm takes the last whitespace separated token of every non-empty line.
func ParseNm(out []byte) (v []string) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		v = append(v, f[len(f)-1])
	}
	return unique(v)
}

// ParseObjdump reads export table rows of `objdump -p`: a decimal ordinal,
// a 0x address and the name.
func ParseObjdump(out []byte) (v []string) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 3 || !digits(f[0]) || !strings.HasPrefix(f[1], "0x") {
			continue
		}
		v = append(v, f[2])
	}
	return unique(v)
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// unique drops repeats and empty names, keeping first appearance order.
func unique(in []string) (v []string) {
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		v = append(v, s)
	}
	return
}
