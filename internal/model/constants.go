package model

// Stage 合成任务阶段
type Stage string

// 合成任务阶段常量
const (
	StageQueued     Stage = "queued"     // 已入队
	StageAnalyzing  Stage = "analyzing"  // 分析中
	StageGenerating Stage = "generating" // 生成中
	StageTesting    Stage = "testing"    // 测试中
	StageComplete   Stage = "complete"   // 完成（终态）
	StageError      Stage = "error"      // 失败（终态）
)

// Complexity 合成任务复杂度分类常量
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// stageOrder 阶段全序表。所有其他组件只读取 job.Stage，
// 阶段顺序只在这里定义一次。
var stageOrder = map[Stage]int{
	StageQueued:     0,
	StageAnalyzing:  1,
	StageGenerating: 2,
	StageTesting:    3,
	StageComplete:   4,
}

// IsValidStage 判断给定阶段是否合法
func IsValidStage(s Stage) bool {
	if s == StageError {
		return true
	}
	_, ok := stageOrder[s]
	return ok
}

// IsTerminal 判断阶段是否为终态
func IsTerminal(s Stage) bool {
	return s == StageComplete || s == StageError
}

// CanTransition 判断从 from 阶段到 to 阶段是否允许。
// 允许：顺序前进、同阶段内的进度更新、任意非终态直接转 error。
func CanTransition(from, to Stage) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StageError {
		return true
	}
	fromIdx, ok := stageOrder[from]
	if !ok {
		return false
	}
	toIdx, ok := stageOrder[to]
	if !ok {
		return false
	}
	return toIdx >= fromIdx
}

// IsValidComplexity 判断复杂度分类是否合法
func IsValidComplexity(c string) bool {
	switch c {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex:
		return true
	}
	return false
}
