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
package elasticsearch

type templateInfo struct {
	IndexPattern string
}

const threadMapping = `{
					"properties": {
						"addr": { "type": "keyword" },
						"resolved": { "type": "boolean" },
						"identity": {
							"properties": {
								"name": { "type": "keyword" },
								"pid": { "type": "long" },
								"tid": { "type": "long" },
								"win32_thread": { "type": "keyword" }
							}
						}
					}
				}`

const hookMapping = `{
			"properties": {
				"entry": {
					"properties": {
						"head": { "type": "keyword" },
						"owner": { "type": "keyword" },
						"uniq": { "type": "integer" }
					}
				},
				"object": {
					"properties": {
						"handle": { "type": "keyword" },
						"pti": { "type": "keyword" },
						"desktop": { "type": "keyword" },
						"self": { "type": "keyword" },
						"next": { "type": "keyword" },
						"callback": { "type": "keyword" },
						"module": { "type": "integer" },
						"target_pti": { "type": "keyword" }
					}
				},
				"owner": ` + threadMapping + `,
				"origin": ` + threadMapping + `,
				"target": ` + threadMapping + `
			}
		}`

const indexTemplate = `
{
	"index_patterns": [ "{{ .IndexPattern }}" ],
	"settings": {
		"index": {
			"refresh_interval": "5s",
			"number_of_shards": 1,
			"number_of_replicas": 1
		}
	},
	"mappings": {
		"properties": {
			"timestamp": { "type": "date" },
			"host": { "type": "keyword" },
			"desktop": { "type": "keyword" },
			"kind": { "type": "keyword" },
			"changes": {
				"type": "nested",
				"properties": {
					"field": { "type": "keyword" },
					"before": { "type": "keyword" },
					"after": { "type": "keyword" }
				}
			},
			"before": ` + hookMapping + `,
			"after": ` + hookMapping + `
		}
	}
}
`
