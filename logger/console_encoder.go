package logger

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/teranos/foreman/sym"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette is one theme's set of ANSI colors.
type palette struct {
	fg        string
	time      string
	id        string
	number    string
	symbol    string
	component []string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

// Gruvbox Dark (warm, muted)
var gruvbox = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;108m",
	id:        "\x1b[38;5;109m",
	number:    "\x1b[38;5;175m",
	symbol:    "\x1b[38;5;142m",
	component: []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
	warn:      "\x1b[38;5;214m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;88m",
}

// Everforest Dark (forest greens)
var everforest = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;107m",
	id:        "\x1b[38;5;109m",
	number:    "\x1b[38;5;108m",
	symbol:    "\x1b[38;5;108m",
	component: []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
	warn:      "\x1b[38;5;179m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;52m",
}

var themes = map[string]*palette{
	"everforest": &everforest,
	"gruvbox":    &gruvbox,
}

// currentTheme changes at runtime when the config file is reloaded.
var currentTheme atomic.Value

func init() {
	currentTheme.Store("everforest")
}

// SetTheme configures the color scheme for log output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme.Store(theme)
	}
}

// Theme returns the active theme name
func Theme() string {
	return currentTheme.Load().(string)
}

func colors() palette {
	return *themes[Theme()]
}

// Fields rendered as identifiers rather than plain key=value pairs
var idFields = map[string]bool{
	FieldJobID:      true,
	FieldHolderID:   true,
	FieldItemID:     true,
	FieldConstraint: true,
	FieldSessionID:  true,
}

// consoleEncoder implements a compact console encoder with theme support.
// Format: "13:04:35  workflow  ⚒ Stopping production  constraint=BAR//COAL frame=1200"
type consoleEncoder struct {
	zapcore.Encoder // base encoder for With() field accumulation
	context         []zapcore.Field
}

var bufferPool = buffer.NewPool()

func newConsoleEncoder() *consoleEncoder {
	return &consoleEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *consoleEncoder) Clone() zapcore.Encoder {
	ctx := make([]zapcore.Field, len(enc.context))
	copy(ctx, enc.context)
	return &consoleEncoder{Encoder: enc.Encoder.Clone(), context: ctx}
}

// AddString captures string fields attached with logger.With so the symbol
// and identifiers survive into EncodeEntry.
func (enc *consoleEncoder) AddString(key, value string) {
	enc.context = append(enc.context, zap.String(key, value))
}

func (enc *consoleEncoder) AddInt64(key string, value int64) {
	enc.context = append(enc.context, zap.Int64(key, value))
}

func (enc *consoleEncoder) AddInt(key string, value int) {
	enc.context = append(enc.context, zap.Int(key, value))
}

func (enc *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := bufferPool.Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	all := make([]zapcore.Field, 0, len(enc.context)+len(fields))
	all = append(all, enc.context...)
	all = append(all, fields...)

	final.AppendString("  ")
	if symbol := symbolOf(all); symbol != "" {
		final.AppendString(c.symbol)
		final.AppendString(symbol)
		final.AppendString(colorReset)
		final.AppendString(" ")
	}
	final.AppendString(c.fg)
	final.AppendString(colorizeSymbols(ent.Message, c.symbol, c.fg))
	final.AppendString(colorReset)

	if rendered := renderFields(all); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

func symbolOf(fields []zapcore.Field) string {
	for _, f := range fields {
		if f.Key == FieldSymbol && f.Type == zapcore.StringType {
			return f.String
		}
	}
	return ""
}

// colorizeSymbols highlights lifecycle glyphs embedded in messages
func colorizeSymbols(text, symbolColor, base string) string {
	for _, glyph := range []string{sym.Pulse, sym.PulseOpen, sym.PulseClose} {
		text = strings.ReplaceAll(text, glyph, symbolColor+glyph+colorReset+base)
	}
	return text
}

func colorComponent(name string) string {
	hash := 0
	for _, r := range name {
		hash += int(r)
	}
	choices := colors().component
	return choices[hash%len(choices)]
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.DebugLevel:
		return c.fg + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: workflow.guard -> w.guard
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// fieldValue extracts the printable value of a zap field
func fieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", uint64(field.Integer))
	case zapcore.Float64Type:
		return fmt.Sprintf("%g", math.Float64frombits(uint64(field.Integer)))
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	case zapcore.DurationType:
		return fmt.Sprintf("%dms", field.Integer/1e6)
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return err.Error()
		}
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// renderFields prints key=value pairs with identifiers and numbers colored.
// The symbol field is omitted since it prefixes the message.
func renderFields(fields []zapcore.Field) string {
	c := colors()
	var parts []string
	for _, f := range fields {
		if f.Key == FieldSymbol {
			continue
		}
		val := fieldValue(f)
		if val == "" {
			continue
		}
		color := c.fg
		switch {
		case idFields[f.Key]:
			color = c.id
		case isNumeric(f.Type):
			color = c.number
		case f.Type == zapcore.ErrorType:
			color = c.err
		}
		parts = append(parts, f.Key+"="+color+val+colorReset)
	}
	return strings.Join(parts, " ")
}

func isNumeric(t zapcore.FieldType) bool {
	switch t {
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type,
		zapcore.Float64Type, zapcore.Float32Type:
		return true
	}
	return false
}
