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

package filter

import (
	"github.com/rabbitstack/hookscan/pkg/gui"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func resolved(name string, pid uint32) hook.ThreadRef {
	return hook.ThreadRef{Addr: 0xfffff90100634010, Resolved: true, Identity: gui.Identity{Name: name, Pid: pid, Tid: pid + 4}}
}

func newHook(typ hook.Type, owner, origin, target hook.ThreadRef) *hook.Hook {
	return &hook.Hook{Object: hook.Object{Type: typ}, Owner: owner, Origin: origin, Target: target}
}

func TestMatch(t *testing.T) {
	keylog := newHook(hook.KeyboardLL, resolved("keylog.exe", 7720), resolved("keylog.exe", 7720), hook.ThreadRef{})
	shell := newHook(hook.Shell, resolved("explorer.exe", 4412), resolved("explorer.exe", 4412), resolved("notepad.exe", 912))
	unknown := newHook(hook.Mouse, hook.ThreadRef{Addr: 0xfffff90100999000}, hook.ThreadRef{Addr: 0xfffff90100999000}, hook.ThreadRef{})

	var tests = []struct {
		name     string
		config   Config
		hook     *hook.Hook
		expected bool
	}{
		{"no rules", Config{}, keylog, true},
		{"no rules unresolved", Config{}, unknown, true},
		{"process pattern", Config{Processes: []string{"KEY*"}}, keylog, true},
		{"process pattern miss", Config{Processes: []string{"key*"}}, shell, false},
		{"target process", Config{Processes: []string{"notepad.exe"}}, shell, true},
		{"pid", Config{Pids: []uint{912}}, shell, true},
		{"pid miss", Config{Pids: []uint{1}}, shell, false},
		{"unresolved never included", Config{Processes: []string{"*"}}, unknown, false},
		{"excluded process", Config{ExcludeProcesses: []string{"explorer.exe"}}, shell, false},
		{"excluded pid wins over included", Config{Processes: []string{"*"}, ExcludePids: []uint{7720}}, keylog, false},
		{"hook type", Config{HookTypes: []string{"WH_KEYBOARD_LL"}}, keylog, true},
		{"hook type miss", Config{HookTypes: []string{"WH_KEYBOARD_LL", "mouse_ll"}}, shell, false},
		{"hook type and process", Config{HookTypes: []string{"WH_SHELL"}, Processes: []string{"explorer.exe"}}, shell, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.Match(tt.hook))
		})
	}
}

func TestMatchMsgFilter(t *testing.T) {
	f, err := New(Config{HookTypes: []string{"WH_MSGFILTER"}})
	require.NoError(t, err)
	assert.True(t, f.Match(newHook(hook.MsgFilter, hook.ThreadRef{}, hook.ThreadRef{}, hook.ThreadRef{})))
	assert.False(t, f.Match(newHook(hook.Type(-5), hook.ThreadRef{}, hook.ThreadRef{}, hook.ThreadRef{})))
}

func TestNewUnknownHookType(t *testing.T) {
	_, err := New(Config{HookTypes: []string{"WH_NOPE"}})
	require.Error(t, err)
}

func TestEvents(t *testing.T) {
	f, err := New(Config{Processes: []string{"keylog.exe"}})
	require.NoError(t, err)

	before := newHook(hook.KeyboardLL, resolved("keylog.exe", 7720), resolved("keylog.exe", 7720), hook.ThreadRef{})
	after := newHook(hook.KeyboardLL, resolved("svchost.exe", 812), resolved("svchost.exe", 812), hook.ThreadRef{})
	other := newHook(hook.Shell, resolved("explorer.exe", 4412), resolved("explorer.exe", 4412), hook.ThreadRef{})

	events := []hook.Event{
		{Desktop: "Default", Kind: hook.Added, After: other},
		{Desktop: "Default", Kind: hook.Modified, Before: before, After: after},
		{Desktop: "Default", Kind: hook.Removed, Before: before},
	}
	wanted := f.Events(events)
	require.Len(t, wanted, 2)
	assert.Equal(t, hook.Modified, wanted[0].Kind)
	assert.Equal(t, hook.Removed, wanted[1].Kind)
}

func TestInitFromViper(t *testing.T) {
	flags := new(pflag.FlagSet)
	AddFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--filter.processes=keylog*,notepad.exe",
		"--filter.pids=912,x",
		"--filter.hook-types=WH_KEYBOARD_LL",
	}))
	v := viper.New()
	require.NoError(t, v.BindPFlags(flags))

	var c Config
	c.InitFromViper(v)
	assert.Equal(t, []string{"keylog*", "notepad.exe"}, c.Processes)
	assert.Equal(t, []uint{912}, c.Pids)
	assert.Equal(t, []string{"WH_KEYBOARD_LL"}, c.HookTypes)
	assert.Empty(t, c.ExcludePids)
}
