package etcd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceKey(t *testing.T) {
	inst := Instance{ID: "a", Env: "prod", Version: "1.2.0", Host: "10.0.0.5", Port: "8080"}
	assert.Equal(t, "/services/studioadmin/prod/1.2.0/10.0.0.5:8080", inst.Key())
}

func TestDecodeInstancesSkipsForeignValues(t *testing.T) {
	got := decodeInstances([][]byte{
		[]byte(`{"instance_id":"a","env":"prod","ip":"10.0.0.5","port":"8080"}`),
		[]byte(`not json`),
		[]byte(`{"env":"prod"}`),
	})
	if assert.Len(t, got, 1) {
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "8080", got[0].Port)
	}
}
