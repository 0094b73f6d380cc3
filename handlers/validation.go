package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of a 400 {"errors": [...]} body.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

var registerTagName sync.Once

// useJSONNames makes validation errors report the JSON field name.
func useJSONNames() {
	registerTagName.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

func validationFailed(c *gin.Context, errs ...FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}

func bodyError(msg, param string) FieldError {
	return FieldError{Msg: msg, Param: param, Location: "body"}
}

// bindJSON binds and validates the request body into req. Messages come from
// the msg tag of the failing field. On failure the 400 is already written.
func bindJSON(c *gin.Context, req interface{}) bool {
	useJSONNames()

	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		validationFailed(c, bodyError("Invalid request body", ""))
		return false
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fieldMessage(reflect.TypeOf(req), fe.StructNamespace())
		if msg == "" {
			msg = fe.Field() + " is invalid"
		}
		out = append(out, bodyError(msg, jsonPath(fe.Namespace())))
	}
	validationFailed(c, out...)
	return false
}

// fieldMessage walks a namespace like "loginRequest.Keys.Auth" down the
// struct type and returns the msg tag it finds.
func fieldMessage(t reflect.Type, namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return ""
	}

	var field reflect.StructField
	for _, name := range parts[1:] {
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return ""
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return ""
		}
		field = f
		t = f.Type
	}
	return field.Tag.Get("msg")
}

func jsonPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
