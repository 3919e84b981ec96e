package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		sig  string
		want string
	}{
		{"PythonStyle", "reverse_string(s: str) -> str", "reverse_string(S)->S"},
		{"MultipleArgs", "add(a: int, b: int) -> int", "add(I,I)->I"},
		{"MixedTypes", "score(items: list[int], weight: float) -> bool", "score(L[I],F)->B"},
		{"GoStyle", "sum(xs: []int) -> float64", "sum(L[I])->F"},
		{"NoArgs", "now() -> float", "now()->F"},
		{"NoReturnType", "log(msg: str)", "log(S)->A"},
		{"UntypedArg", "apply(f, x: int) -> int", "apply(A,I)->I"},
		{"UnknownTypePreserved", "parse(data: bytes) -> Tree", "parse(bytes)->Tree"},
		{"SpaceBeforeArrow", "trim(s: str) -> str", "trim(S)->S"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.sig))
		})
	}
}

func TestNormalizeUnparseable(t *testing.T) {
	// 无法解析的签名原样返回
	assert.Equal(t, "not a signature", Normalize("not a signature"))
	assert.Equal(t, "broken(unclosed", Normalize("broken(unclosed"))
}

func TestKey(t *testing.T) {
	// 空签名退化为函数名
	assert.Equal(t, "reverse_string()->A", Key("reverse_string", ""))
	assert.Equal(t, "reverse_string()->A", Key(" reverse_string ", "   "))
	assert.Equal(t, "add(I,I)->I", Key("add", "add(a: int, b: int) -> int"))
}

func TestNormalizeIsDeterministic(t *testing.T) {
	sig := "merge(a: list[int], b: list[int]) -> list[int]"
	first := Normalize(sig)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Normalize(sig))
	}
}
