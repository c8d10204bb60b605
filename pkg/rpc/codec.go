package rpc

import (
	"context"
	"fmt"
	"math"

	"github.com/cuemby/reportwatch/pkg/types"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const reportsField = "reports"

// EncodeReportList converts reports to their wire message
func EncodeReportList(reports []types.Report) *structpb.Struct {
	values := make([]*structpb.Value, len(reports))
	for i, r := range reports {
		values[i] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"id":     structpb.NewNumberValue(float64(r.ID)),
				"time":   structpb.NewNumberValue(float64(r.Time)),
				"year":   structpb.NewNumberValue(float64(r.Year)),
				"text":   structpb.NewStringValue(r.Text),
				"type":   structpb.NewStringValue(r.Type),
				"color":  structpb.NewNumberValue(float64(r.Color)),
				"bright": structpb.NewBoolValue(r.Bright),
				"repeat": structpb.NewNumberValue(float64(r.Repeat)),
			},
		})
	}
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			reportsField: structpb.NewListValue(&structpb.ListValue{Values: values}),
		},
	}
}

// DecodeReportList converts a wire message to reports
func DecodeReportList(msg *structpb.Struct) ([]types.Report, error) {
	field, ok := msg.GetFields()[reportsField]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, reportsField)
	}
	list, ok := field.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a list", ErrMalformed, reportsField)
	}

	values := list.ListValue.GetValues()
	out := make([]types.Report, 0, len(values))
	for i, v := range values {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%w: report %d is not a struct", ErrMalformed, i)
		}
		r, err := decodeReport(s)
		if err != nil {
			return nil, fmt.Errorf("report %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func decodeReport(s *structpb.Struct) (types.Report, error) {
	var (
		r   types.Report
		err error
	)
	f := s.GetFields()
	if r.ID, err = int32Field(f, "id"); err != nil {
		return r, err
	}
	if r.Time, err = int32Field(f, "time"); err != nil {
		return r, err
	}
	if r.Year, err = int32Field(f, "year"); err != nil {
		return r, err
	}
	if r.Color, err = int32Field(f, "color"); err != nil {
		return r, err
	}
	if r.Repeat, err = int32Field(f, "repeat"); err != nil {
		return r, err
	}
	if r.Text, err = stringField(f, "text"); err != nil {
		return r, err
	}
	if r.Type, err = stringField(f, "type"); err != nil {
		return r, err
	}
	if v, ok := f["bright"]; ok {
		b, isBool := v.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return r, fmt.Errorf("%w: %q is not a bool", ErrMalformed, "bright")
		}
		r.Bright = b.BoolValue
	}
	return r, nil
}

func int32Field(f map[string]*structpb.Value, name string) (int32, error) {
	v, ok := f[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformed, name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, name)
	}
	x := n.NumberValue
	if x != math.Trunc(x) || x < math.MinInt32 || x > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q out of range: %v", ErrMalformed, name, x)
	}
	return int32(x), nil
}

func stringField(f map[string]*structpb.Value, name string) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformed, name)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrMalformed, name)
	}
	return s.StringValue, nil
}

// CallString invokes a procedure returning a string value
func CallString(ctx context.Context, t Transport, h Handle) (string, error) {
	var reply wrapperspb.StringValue
	if err := t.Call(ctx, h, &emptypb.Empty{}, &reply); err != nil {
		return "", err
	}
	return reply.GetValue(), nil
}

// CallReportList invokes a procedure returning a report list
func CallReportList(ctx context.Context, t Transport, h Handle) ([]types.Report, error) {
	var reply structpb.Struct
	if err := t.Call(ctx, h, &emptypb.Empty{}, &reply); err != nil {
		return nil, err
	}
	return DecodeReportList(&reply)
}

// BindRequest builds the BindMethod request for a procedure
func BindRequest(p *Procedure) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"method":     structpb.NewStringValue(p.Name),
			"plugin":     structpb.NewStringValue(p.Plugin),
			"input_msg":  structpb.NewStringValue(p.Input),
			"output_msg": structpb.NewStringValue(p.Output),
		},
	}
}

// ParseBindRequest extracts the procedure described by a BindMethod request
func ParseBindRequest(msg *structpb.Struct) (*Procedure, error) {
	f := msg.GetFields()
	p := &Procedure{}
	var err error
	if p.Name, err = stringField(f, "method"); err != nil {
		return nil, err
	}
	if p.Plugin, err = stringField(f, "plugin"); err != nil {
		return nil, err
	}
	if p.Input, err = stringField(f, "input_msg"); err != nil {
		return nil, err
	}
	if p.Output, err = stringField(f, "output_msg"); err != nil {
		return nil, err
	}
	return p, nil
}

// Notification builds the wire message of a server log line
func Notification(color int, text string) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"color": structpb.NewNumberValue(float64(color)),
			"text":  structpb.NewStringValue(text),
		},
	}
}

// ParseNotification extracts colour and text from a notification message
func ParseNotification(msg *structpb.Struct) (int, string, error) {
	f := msg.GetFields()
	color, err := int32Field(f, "color")
	if err != nil {
		return 0, "", err
	}
	text, err := stringField(f, "text")
	if err != nil {
		return 0, "", err
	}
	return int(color), text, nil
}
