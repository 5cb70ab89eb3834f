package criteria

import (
	"reflect"
	"strings"

	"querykit/errors"
)

// EscapeCharacter LIKE 模式中通配符的转义器。
type EscapeCharacter struct {
	char rune
}

// DefaultEscapeCharacter 默认以反斜杠转义。
var DefaultEscapeCharacter = EscapeCharacter{char: '\\'}

// NewEscapeCharacter 指定转义字符。
func NewEscapeCharacter(char rune) EscapeCharacter {
	return EscapeCharacter{char: char}
}

// Char 返回转义字符。
func (e EscapeCharacter) Char() rune { return e.char }

// Escape 把值中的 %、_ 与转义字符本身转义为字面量，
// 使其可以安全地拼入 LIKE 模式。
func (e EscapeCharacter) Escape(value string) string {
	if !strings.ContainsAny(value, "%_"+string(e.char)) {
		return value
	}
	var sb strings.Builder
	for _, r := range value {
		if r == '%' || r == '_' || r == e.char {
			sb.WriteRune(e.char)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// StringMatcher 字符串属性的匹配方式。
type StringMatcher int

const (
	// MatchExact 精确匹配
	MatchExact StringMatcher = iota

	// MatchContaining 包含匹配
	MatchContaining

	// MatchStartingWith 前缀匹配
	MatchStartingWith

	// MatchEndingWith 后缀匹配
	MatchEndingWith
)

// ExampleMatcher 按例查询的匹配策略。
type ExampleMatcher struct {
	// StringMatcher 字符串属性的匹配方式
	StringMatcher StringMatcher

	// IgnoreCase 字符串比较是否忽略大小写
	IgnoreCase bool

	// IgnoredProperties 跳过的属性名
	IgnoredProperties []string

	// Escape LIKE 通配符转义器；零值使用默认反斜杠
	Escape EscapeCharacter
}

func (m ExampleMatcher) ignores(property string) bool {
	for _, p := range m.IgnoredProperties {
		if p == property {
			return true
		}
	}
	return false
}

func (m ExampleMatcher) escape() EscapeCharacter {
	if m.Escape.char == 0 {
		return DefaultEscapeCharacter
	}
	return m.Escape
}

// ByExample 按样例实体构造规约：样例的每个非零值属性
// 贡献一个合取条件，零值属性被视为“未指定”。
//
// 属性名取结构体字段的 db 标签，缺省为字段名小写。
// 字符串属性按匹配器的方式比较，其余类型一律等值比较。
func ByExample(probe any, matcher ExampleMatcher) ISpecification {
	return SpecFunc(func(root *Root, _ *QueryContext, b Builder) (*Predicate, error) {
		values, err := probeValues(probe)
		if err != nil {
			return nil, err
		}

		predicates := make([]*Predicate, 0, len(values))
		for _, pv := range values {
			if matcher.ignores(pv.property) {
				continue
			}
			ref, err := root.Get(pv.property)
			if err != nil {
				return nil, err
			}
			predicates = append(predicates, examplePredicate(b, ref, pv.value, matcher))
		}

		return b.And(predicates...), nil
	})
}

type probeValue struct {
	property string
	value    any
}

// probeValues 反射提取样例的非零值导出字段。
func probeValues(probe any) ([]probeValue, error) {
	v := reflect.ValueOf(probe)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, errors.NewError(errors.ErrCodeInvalidInput, "example probe must not be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.NewErrorf(errors.ErrCodeInvalidInput,
			"example probe must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	out := make([]probeValue, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := v.Field(i)
		if fv.IsZero() {
			continue
		}

		property := field.Tag.Get("db")
		if property == "" {
			property = strings.ToLower(field.Name)
		}
		if property == "-" {
			continue
		}

		value := fv.Interface()
		// 指针字段解引用后参与比较
		if fv.Kind() == reflect.Pointer {
			value = fv.Elem().Interface()
		}
		out = append(out, probeValue{property: property, value: value})
	}
	return out, nil
}

func examplePredicate(b Builder, ref string, value any, matcher ExampleMatcher) *Predicate {
	s, isString := value.(string)
	if !isString {
		return b.Eq(ref, value)
	}

	escape := matcher.escape()
	pattern := escape.Escape(s)
	switch matcher.StringMatcher {
	case MatchContaining:
		pattern = "%" + pattern + "%"
	case MatchStartingWith:
		pattern = pattern + "%"
	case MatchEndingWith:
		pattern = "%" + pattern
	default:
		if matcher.IgnoreCase {
			return b.Eq(b.Lower(ref), strings.ToLower(s))
		}
		return b.Eq(ref, s)
	}

	if matcher.IgnoreCase {
		return b.Like(b.Lower(ref), strings.ToLower(pattern), escape.Char())
	}
	return b.Like(ref, pattern, escape.Char())
}
