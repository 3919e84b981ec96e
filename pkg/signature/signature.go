// Package signature derives canonical signature keys for corpus entries.
// A key groups semantically related implementations of the same function
// signature; it is a search key, not a uniqueness constraint.
package signature

import (
	"strings"
)

// typeCanon 类型规范化映射表
var typeCanon = map[string]string{
	"int":         "I",
	"float":       "F",
	"float64":     "F",
	"number":      "N",
	"str":         "S",
	"string":      "S",
	"bool":        "B",
	"list":        "L",
	"list[int]":   "L[I]",
	"list[float]": "L[F]",
	"[]int":       "L[I]",
	"[]float64":   "L[F]",
	"[]string":    "L[S]",
	"any":         "A",
	"Any":         "A",
}

func canonType(t string) string {
	t = strings.TrimSpace(t)
	if c, ok := typeCanon[t]; ok {
		return c
	}
	return t
}

// Normalize 将 "name(a: int, b: str) -> bool" 形式的签名规范化为
// "name(I,S)->B"。无法解析的签名原样返回，保证键的稳定性。
func Normalize(sig string) string {
	name, rest, ok := strings.Cut(sig, "(")
	if !ok {
		return sig
	}
	argsPart, retPart, ok := cutReturn(rest)
	if !ok {
		return sig
	}

	var argTypes []string
	if strings.TrimSpace(argsPart) != "" {
		for _, a := range strings.Split(argsPart, ",") {
			if _, t, ok := strings.Cut(a, ":"); ok {
				argTypes = append(argTypes, canonType(t))
			} else {
				argTypes = append(argTypes, "A")
			}
		}
	}

	return strings.TrimSpace(name) + "(" + strings.Join(argTypes, ",") + ")->" + canonType(retPart)
}

// Key 从函数名和原始签名派生语料库签名键。签名为空时退化为函数名。
func Key(functionName, rawSignature string) string {
	if strings.TrimSpace(rawSignature) == "" {
		return strings.TrimSpace(functionName) + "()->A"
	}
	return Normalize(rawSignature)
}

// cutReturn 切分参数与返回类型，支持 ")->" 和 ") ->" 两种写法
func cutReturn(rest string) (args, ret string, ok bool) {
	idx := strings.LastIndex(rest, ")")
	if idx < 0 {
		return "", "", false
	}
	args = rest[:idx]
	tail := strings.TrimSpace(rest[idx+1:])
	tail = strings.TrimPrefix(tail, "->")
	ret = strings.TrimSpace(tail)
	if ret == "" {
		ret = "A"
	}
	return args, ret, true
}
