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

package outputs

import (
	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestTypeFromString(t *testing.T) {
	assert.Equal(t, Console, TypeFromString("console"))
	assert.Equal(t, Null, TypeFromString("null"))
	assert.Equal(t, AMQP, TypeFromString("amqp"))
	assert.Equal(t, HTTP, TypeFromString("http"))
	assert.Equal(t, Elasticsearch, TypeFromString("elasticsearch"))
	assert.Equal(t, Unknown, TypeFromString("kafka"))
	assert.Equal(t, "elasticsearch", Elasticsearch.String())
	assert.Equal(t, "null", Null.String())
}

func TestLoadNull(t *testing.T) {
	group, err := Load(Null, Config{Type: Null})
	require.NoError(t, err)
	require.Len(t, group.Clients, 1)
	require.NoError(t, group.Clients[0].Connect())
	require.NoError(t, group.Clients[0].Publish([]hook.Event{{Kind: hook.Added}}))
	require.NoError(t, group.Clients[0].Close())

	_, err = Load(Unknown, Config{})
	require.Error(t, err)
}
