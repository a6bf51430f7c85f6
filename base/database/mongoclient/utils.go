package mongoclient

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

var (
	ErrNotStruct = fmt.Errorf("patchable is not a struct")
)

// MakeSetter flattens the tagged fields of doc into a $set document.
// Zero values are left out so a partial doc never clears stored fields,
// pointers are dereferenced and keys listed in immutable are dropped.
func MakeSetter(doc interface{}, immutable ...string) (bson.M, error) {
	val := reflect.Indirect(reflect.ValueOf(doc))
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	skip := make(map[string]bool, len(immutable))
	for _, key := range immutable {
		skip[key] = true
	}

	setter := bson.M{}
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() || field.IsZero() {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(typ.Field(i))
		if err != nil {
			return nil, err
		}
		if tag.Skip || skip[tag.Name] {
			continue
		}
		setter[tag.Name] = reflect.Indirect(field).Interface()
	}
	return setter, nil
}
