package parcel

import (
	"fmt"
	"reflect"
	"unsafe"
)

// GetField reads the named field of the struct obj points to, including
// unexported fields. Failures are recorded on w and return the zero value.
func GetField[T any](w *Writer, obj any, name string) T {
	var zero T
	f, err := field(obj, name)
	if err != nil {
		w.Fail(err)
		return zero
	}
	v, ok := f.Interface().(T)
	if !ok {
		w.Fail(fmt.Errorf("parcel: field %s is %s, not %T", name, f.Type(), zero))
		return zero
	}
	return v
}

// SetField assigns value to the named field of the struct obj points to,
// including unexported fields. Failures are recorded on r.
func SetField(r *Reader, obj any, name string, value any) {
	f, err := field(obj, name)
	if err != nil {
		r.Fail(err)
		return
	}
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return
	}
	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(f.Type()) {
		r.Fail(fmt.Errorf("parcel: cannot assign %s to field %s of type %s", v.Type(), name, f.Type()))
		return
	}
	f.Set(v)
}

func field(obj any, name string) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("parcel: %T is not a pointer to a struct", obj)
	}
	f := rv.Elem().FieldByName(name)
	if !f.IsValid() {
		return reflect.Value{}, fmt.Errorf("parcel: %s has no field %s", rv.Elem().Type(), name)
	}
	if !f.CanSet() {
		f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	}
	return f, nil
}
