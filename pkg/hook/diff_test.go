/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hook

import (
	"errors"
	"github.com/rabbitstack/hookscan/pkg/desktop"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDiffScenarios(t *testing.T) {
	var tests = []struct {
		name   string
		a      []testHook
		b      []testHook
		kind   Kind
		key    va.Address
		assert func(t *testing.T, e Event)
	}{
		{
			"added",
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard}},
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard}, {desk: defaultDesktop, key: 0x12000, typ: KeyboardLL}},
			Added,
			0x12000,
			func(t *testing.T, e Event) {
				assert.Nil(t, e.Before)
				assert.Equal(t, KeyboardLL, e.After.Object.Type)
			},
		},
		{
			"modified flags",
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard, flags: FlagNeedHCSkip}},
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard, flags: FlagHung}},
			Modified,
			0x11000,
			func(t *testing.T, e Event) {
				assert.Equal(t, Flags(0x4), e.Before.Object.Flags)
				assert.Equal(t, Flags(0x8), e.After.Object.Flags)
				assert.Equal(t, []Change{{Field: "flags", Before: "HF_NEEDHC_SKIP", After: "HF_HUNG"}}, e.Changes())
			},
		},
		{
			"removed",
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard}},
			nil,
			Removed,
			0x11000,
			func(t *testing.T, e Event) {
				assert.Nil(t, e.After)
				assert.Equal(t, va.Address(0x11000), e.Hook().Key())
			},
		},
		{
			"modified origin",
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard, origin: explorer.Win32Thread}},
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard, origin: keylog.Win32Thread}},
			Modified,
			0x11000,
			func(t *testing.T, e Event) {
				require.Len(t, e.Changes(), 1)
				assert.Equal(t, "origin", e.Changes()[0].Field)
				assert.Equal(t, "explorer.exe(4412:4416)", e.Changes()[0].Before)
				assert.Equal(t, "keylog.exe(7720:7724)", e.Changes()[0].After)
			},
		},
		{
			"modified module",
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard, module: -1}},
			[]testHook{{desk: defaultDesktop, key: 0x11000, typ: Keyboard, module: 7}},
			Modified,
			0x11000,
			func(t *testing.T, e Event) {
				assert.Equal(t, []Change{{Field: "module", Before: "-1", After: "7"}}, e.Changes())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lockThread(t)
			a := newFixture(defaultDesktop).add(tt.a...).snapshot(t)
			b := newFixture(defaultDesktop).add(tt.b...).snapshot(t)

			events, err := Diff(a, b)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, "Default", events[0].Desktop)
			assert.Equal(t, tt.kind, events[0].Kind)
			assert.Equal(t, tt.key, events[0].Hook().Key())
			tt.assert(t, events[0])
		})
	}
}

func TestDiffUnchanged(t *testing.T) {
	lockThread(t)

	hooks := []testHook{
		{desk: defaultDesktop, key: 0x11000, typ: Keyboard, owner: explorer.Win32Thread, origin: explorer.Win32Thread},
		{desk: defaultDesktop, key: 0x12000, typ: MouseLL, owner: 0xfffff90100999000},
	}
	a := newFixture(defaultDesktop).add(hooks...).snapshot(t)
	b := newFixture(defaultDesktop).add(hooks...).snapshot(t)

	events, err := Diff(a, b)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDiffOrdering(t *testing.T) {
	lockThread(t)

	a := newFixture(defaultDesktop, winlogonDesktop).add(
		testHook{desk: defaultDesktop, key: 0x11000, typ: Keyboard},
		testHook{desk: defaultDesktop, key: 0x13000, typ: Mouse},
		testHook{desk: defaultDesktop, key: 0x15000, typ: CBT, flags: FlagAnsi},
		testHook{desk: winlogonDesktop, key: 0x30200, typ: Shell},
	).snapshot(t)
	b := newFixture(winlogonDesktop, defaultDesktop).add(
		testHook{desk: defaultDesktop, key: 0x12000, typ: KeyboardLL},
		testHook{desk: defaultDesktop, key: 0x13000, typ: Mouse},
		testHook{desk: defaultDesktop, key: 0x15000, typ: CBT},
		testHook{desk: winlogonDesktop, key: 0x30100, typ: Shell},
	).snapshot(t)

	events, err := Diff(a, b)
	require.NoError(t, err)

	type ev struct {
		desktop string
		kind    Kind
		key     va.Address
	}
	expected := []ev{
		{"Winlogon", Added, 0x30100},
		{"Winlogon", Removed, 0x30200},
		{"Default", Removed, 0x11000},
		{"Default", Added, 0x12000},
		{"Default", Modified, 0x15000},
	}
	require.Len(t, events, len(expected))
	for i, e := range events {
		assert.Equal(t, expected[i], ev{e.Desktop, e.Kind, e.Hook().Key()}, "event %d", i)
	}
}

func TestDiffUnpairedDesktops(t *testing.T) {
	lockThread(t)

	services := &desktop.Desktop{Name: "Service-0x0-3e7$", Base: 0x50000, Limit: 0x60000}
	a := newFixture(defaultDesktop, services).add(
		testHook{desk: services, key: 0x50100, typ: Keyboard},
	).snapshot(t)
	b := newFixture(defaultDesktop, winlogonDesktop).add(
		testHook{desk: winlogonDesktop, key: 0x30100, typ: Shell},
	).snapshot(t)

	events, err := Diff(a, b)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDiffSymmetry(t *testing.T) {
	lockThread(t)

	a := newFixture(defaultDesktop).add(
		testHook{desk: defaultDesktop, key: 0x11000, typ: Keyboard},
		testHook{desk: defaultDesktop, key: 0x13000, typ: Mouse, flags: FlagGlobal},
		testHook{desk: defaultDesktop, key: 0x14000, typ: Shell},
	).snapshot(t)
	b := newFixture(defaultDesktop).add(
		testHook{desk: defaultDesktop, key: 0x12000, typ: KeyboardLL},
		testHook{desk: defaultDesktop, key: 0x13000, typ: Mouse},
		testHook{desk: defaultDesktop, key: 0x14000, typ: Shell},
	).snapshot(t)

	ab, err := Diff(a, b)
	require.NoError(t, err)
	ba, err := Diff(b, a)
	require.NoError(t, err)
	require.Len(t, ab, len(ba))

	inverse := map[Kind]Kind{Added: Removed, Removed: Added, Modified: Modified}
	for i := range ab {
		assert.Equal(t, ab[i].Hook().Key(), ba[i].Hook().Key())
		assert.Equal(t, inverse[ab[i].Kind], ba[i].Kind)
		if ab[i].Kind == Modified {
			assert.Equal(t, ab[i].Before, ba[i].After)
			assert.Equal(t, ab[i].After, ba[i].Before)
		}
	}
}

func TestDiffMergeCompleteness(t *testing.T) {
	lockThread(t)

	var ah, bh []testHook
	for i := 0; i < 64; i++ {
		key := va.Address(0x10000 + i*0x100)
		switch i % 4 {
		case 0:
			ah = append(ah, testHook{desk: defaultDesktop, key: key, typ: Keyboard})
		case 1:
			bh = append(bh, testHook{desk: defaultDesktop, key: key, typ: Keyboard})
		case 2:
			ah = append(ah, testHook{desk: defaultDesktop, key: key, typ: Keyboard})
			bh = append(bh, testHook{desk: defaultDesktop, key: key, typ: Keyboard})
		case 3:
			ah = append(ah, testHook{desk: defaultDesktop, key: key, typ: Keyboard})
			bh = append(bh, testHook{desk: defaultDesktop, key: key, typ: Mouse})
		}
	}
	a := newFixture(defaultDesktop).add(ah...).snapshot(t)
	b := newFixture(defaultDesktop).add(bh...).snapshot(t)

	events, err := Diff(a, b)
	require.NoError(t, err)

	seen := make(map[va.Address]int)
	for _, e := range events {
		seen[e.Hook().Key()]++
	}
	for i := 0; i < 64; i++ {
		key := va.Address(0x10000 + i*0x100)
		if i%4 == 2 {
			assert.Zero(t, seen[key], "unchanged hook %s reported", key)
			continue
		}
		assert.Equal(t, 1, seen[key], "hook %s", key)
	}
	assert.Len(t, events, 48)
}

func TestDiffDoesNotMutateStores(t *testing.T) {
	lockThread(t)

	a := newFixture(defaultDesktop).add(testHook{desk: defaultDesktop, key: 0x11000, typ: Keyboard}).snapshot(t)
	b := newFixture(defaultDesktop).add(testHook{desk: defaultDesktop, key: 0x11000, typ: Mouse}).snapshot(t)
	before := append([]Hook(nil), a.Desktops()[0].Hooks()...)

	events, err := Diff(a, b)
	require.NoError(t, err)
	require.Len(t, events, 1)
	events[0].Before.Object.Type = Shell

	assert.Equal(t, before, a.Desktops()[0].Hooks())
}

func TestDiffInvalidSnapshot(t *testing.T) {
	lockThread(t)

	valid := newFixture(defaultDesktop).snapshot(t)
	invalid := NewStore()

	var tests = []struct {
		name string
		a, b *Store
	}{
		{"earlier invalid", invalid, valid},
		{"later invalid", valid, invalid},
		{"nil store", nil, valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Diff(tt.a, tt.b)
			require.True(t, errors.Is(err, ErrInvalidSnapshot))
		})
	}
}
