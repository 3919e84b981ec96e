package complexity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported("python"))
	assert.True(t, Supported("go"))
	assert.True(t, Supported("TypeScript")) // 大小写不敏感
	assert.False(t, Supported("rust"))
	assert.False(t, Supported(""))
}

func TestEstimateStraightLine(t *testing.T) {
	// 无分支代码基线复杂度为1
	snippet := "def add(a, b):\n    return a + b"
	assert.Equal(t, 1, Estimate("python", snippet))
}

func TestEstimateCountsBranches(t *testing.T) {
	snippet := `def classify(x):
    if x > 0:
        return "positive"
    else:
        return "non-positive"`
	// if + else 各计一点
	assert.Equal(t, 3, Estimate("python", snippet))
}

func TestEstimateGoLoops(t *testing.T) {
	straight := `func add(a, b int) int { return a + b }`
	loopy := `func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		if x > 0 {
			total += x
		}
	}
	return total
}`
	assert.Greater(t, Estimate("go", loopy), Estimate("go", straight))
}

func TestEstimateUnsupportedLanguageFallsBack(t *testing.T) {
	// 不支持的语言退化为行数启发式
	short := "fn main() {\n    println!(\"hi\");\n}"
	assert.Equal(t, 1, Estimate("rust", short))

	long := strings.Repeat("let x = 1;\n", 25)
	assert.Equal(t, 3, Estimate("rust", long))
}

func TestEstimateEmptySnippet(t *testing.T) {
	assert.Equal(t, 0, Estimate("rust", "   \n  "))
	assert.Equal(t, 1, Estimate("python", ""))
}
