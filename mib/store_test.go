// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeo-scada/mini-snmpd/snmp"
)

func oid(parts ...int) snmp.OID { return snmp.OID(parts) }

func TestNewStoreRejectsDuplicateOIDs(t *testing.T) {
	_, err := NewStore([]Entry{
		{OID: oid(1, 3, 6, 1, 2, 1, 1, 1, 0), Value: snmp.NewNull()},
		{OID: oid(1, 3, 6, 1, 2, 1, 1, 1, 0), Value: snmp.NewNull()},
	})
	assert.Error(t, err)
}

func TestStoreLookupExactMatch(t *testing.T) {
	store, err := NewStore([]Entry{
		{OID: oid(1, 1), Value: snmp.NewInteger(1)},
		{OID: oid(1, 2), Value: snmp.NewInteger(2)},
		{OID: oid(1, 3), Value: snmp.NewInteger(3)},
	})
	require.NoError(t, err)

	e, ok := store.Lookup(oid(1, 2))
	require.True(t, ok)
	assert.Equal(t, int32(2), e.Value.Int)

	_, ok = store.Lookup(oid(1, 9))
	assert.False(t, ok)
}

func TestStoreSuccessorWalksInOrder(t *testing.T) {
	store, err := NewStore([]Entry{
		{OID: oid(1, 1), Value: snmp.NewInteger(1)},
		{OID: oid(1, 3), Value: snmp.NewInteger(3)},
		{OID: oid(1, 5), Value: snmp.NewInteger(5)},
	})
	require.NoError(t, err)

	e, ok := store.Successor(oid(1, 2))
	require.True(t, ok)
	assert.Equal(t, int32(3), e.Value.Int)

	e, ok = store.Successor(oid(1))
	require.True(t, ok)
	assert.Equal(t, int32(1), e.Value.Int)

	_, ok = store.Successor(oid(1, 5))
	assert.False(t, ok, "successor of the last entry does not exist")

	_, ok = store.Successor(oid(9))
	assert.False(t, ok, "successor past every entry does not exist")
}

func TestStoreHasColumnDistinguishesMissingObjectFromMissingInstance(t *testing.T) {
	store, err := NewStore([]Entry{
		{OID: oid(1, 2, 1, 2), Value: snmp.NewInteger(1)}, // column 2, row 1
	})
	require.NoError(t, err)

	assert.True(t, store.HasColumn(oid(1, 2, 1, 9)), "column 2 exists at row 1, just not row 9")
	assert.False(t, store.HasColumn(oid(1, 2, 9, 1)), "column 9 doesn't exist at any row")
	assert.False(t, store.HasColumn(oid()))
}

func TestStoreRefreshRespectsTiers(t *testing.T) {
	calls := map[string]int{}
	store, err := NewStore([]Entry{
		{
			OID: oid(1, 1), Tier: TierStatic, Value: snmp.NewInteger(0),
			refresh: func() (snmp.Value, bool) { calls["static"]++; return snmp.NewInteger(1), true },
		},
		{
			OID: oid(1, 2), Tier: TierPartial, Value: snmp.NewInteger(0),
			refresh: func() (snmp.Value, bool) { calls["partial"]++; return snmp.NewInteger(1), true },
		},
		{
			OID: oid(1, 3), Tier: TierFull, Value: snmp.NewInteger(0),
			refresh: func() (snmp.Value, bool) { calls["full"]++; return snmp.NewInteger(1), true },
		},
	})
	require.NoError(t, err)

	store.Refresh(false)
	assert.Equal(t, 0, calls["static"])
	assert.Equal(t, 1, calls["partial"])
	assert.Equal(t, 0, calls["full"])

	store.Refresh(true)
	assert.Equal(t, 0, calls["static"], "static entries never refresh")
	assert.Equal(t, 2, calls["partial"])
	assert.Equal(t, 1, calls["full"])
}

func TestStoreAllReturnsAscendingCopy(t *testing.T) {
	store, err := NewStore([]Entry{
		{OID: oid(1, 3), Value: snmp.NewInteger(3)},
		{OID: oid(1, 1), Value: snmp.NewInteger(1)},
		{OID: oid(1, 2), Value: snmp.NewInteger(2)},
	})
	require.NoError(t, err)

	all := store.All()
	require.Len(t, all, 3)
	assert.Equal(t, int32(1), all[0].Value.Int)
	assert.Equal(t, int32(2), all[1].Value.Int)
	assert.Equal(t, int32(3), all[2].Value.Int)

	all[0].Value = snmp.NewInteger(999)
	again, _ := store.Lookup(oid(1, 1))
	assert.Equal(t, int32(1), again.Value.Int, "All must return a copy, not the live slice")
}
