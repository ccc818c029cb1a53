// Package codec 负责命令参数的文本编解码。
// 所有“不可信文本 → 类型值”的转换集中在这里，解析失败时返回 ok=false 且不返回部分结果。
package codec

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat 解析单个数值 token；NaN/Inf 视为失败
func ParseFloat(token string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt 解析整数 token，允许 "2.0" 这类整值浮点写法
func ParseInt(token string) (int, bool) {
	t := strings.TrimSpace(token)
	if n, err := strconv.Atoi(t); err == nil {
		return n, true
	}
	f, ok := ParseFloat(t)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseFloats 取前 n 个 token 解析为浮点数组；不足 n 个或任一非数值则失败，多余 token 忽略
func ParseFloats(tokens []string, n int) ([]float64, bool) {
	if n < 0 || len(tokens) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, ok := ParseFloat(tokens[i])
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// ParseVector3 解析打包成单个 token 的向量，如 "1,0,2"、"1 0 2"、"(1, 0, 2)"
func ParseVector3(token string) (Vec3, bool) {
	parts := splitPacked(token)
	if len(parts) != 3 {
		return Vec3{}, false
	}
	return ParseVector3Tokens(parts)
}

// ParseVector3Tokens 解析三个独立 token 组成的向量
func ParseVector3Tokens(tokens []string) (Vec3, bool) {
	f, ok := ParseFloats(tokens, 3)
	if !ok {
		return Vec3{}, false
	}
	return Vec3{f[0], f[1], f[2]}, true
}

// ParseColor 解析打包成单个 token 的 RGBA 颜色（必须 4 个分量）
func ParseColor(token string) (Color, bool) {
	parts := splitPacked(token)
	if len(parts) != 4 {
		return Color{}, false
	}
	return ParseColorTokens(parts)
}

// ParseColorTokens 解析四个独立 token 组成的颜色
func ParseColorTokens(tokens []string) (Color, bool) {
	f, ok := ParseFloats(tokens, 4)
	if !ok {
		return Color{}, false
	}
	return Color{R: f[0], G: f[1], B: f[2], A: f[3]}, true
}

// FormatVector3 以 delim 拼接三个分量，数值使用最短精确表示
func FormatVector3(v Vec3, delim string) string {
	return strings.Join([]string{
		strconv.FormatFloat(v.X, 'f', -1, 64),
		strconv.FormatFloat(v.Y, 'f', -1, 64),
		strconv.FormatFloat(v.Z, 'f', -1, 64),
	}, delim)
}

// PackTokens 把多个分量 token 合并为单个打包 token（FormatVector3 的文本版本）
func PackTokens(tokens []string) string {
	trimmed := make([]string, len(tokens))
	for i, t := range tokens {
		trimmed[i] = strings.TrimSpace(t)
	}
	return strings.Join(trimmed, ",")
}

func splitPacked(token string) []string {
	t := strings.TrimSpace(token)
	t = strings.TrimLeft(t, "([")
	t = strings.TrimRight(t, ")]")
	return strings.FieldsFunc(t, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
}
