package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mu-graph/mu/ir"
)

func TestIsMutatingHonorsPropertyOverrideTrue(t *testing.T) {
	fn := &ir.FunctionIR{Name: "Compute", BodySource: "return 1", Properties: map[string]string{"mutating": "true"}}
	assert.True(t, IsMutating(fn))
}

func TestIsMutatingHonorsPropertyOverrideFalse(t *testing.T) {
	fn := &ir.FunctionIR{Name: "Save", BodySource: "db.save(x)", Properties: map[string]string{"mutating": "false"}}
	assert.False(t, IsMutating(fn), "an explicit override wins over the IO-call heuristic")
}

func TestIsMutatingDetectsReceiverAssignment(t *testing.T) {
	fn := &ir.FunctionIR{Name: "SetName", IsMethod: true, BodySource: "self.name = name\n"}
	assert.True(t, IsMutating(fn))
}

func TestIsMutatingIgnoresEqualityCheck(t *testing.T) {
	fn := &ir.FunctionIR{Name: "IsNamed", IsMethod: true, BodySource: "return self.name == name\n"}
	assert.False(t, IsMutating(fn))
}

func TestIsMutatingDetectsIOBearingCall(t *testing.T) {
	fn := &ir.FunctionIR{Name: "Log", BodySource: "fmt.Println(\"hi\")\n"}
	assert.True(t, IsMutating(fn))
}

func TestIsMutatingFalseForPureFunction(t *testing.T) {
	fn := &ir.FunctionIR{Name: "Add", BodySource: "return a + b\n"}
	assert.False(t, IsMutating(fn))
}

func TestIsMutatingEmptyBody(t *testing.T) {
	fn := &ir.FunctionIR{Name: "Noop"}
	assert.False(t, IsMutating(fn))
}
