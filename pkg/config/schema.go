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

package config

import (
	"bytes"
	"text/template"

	"github.com/rabbitstack/hookscan/pkg/outputs/console"
)

var schema = `
{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"definitions": {
		"duration": {"type": "string", "minLength": 2, "pattern": "^([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$"},
		"pids": {"type": ["array", "null"], "items": {"type": ["integer", "string"], "pattern": "^[0-9]+$", "minimum": 0}}
	},
	"type": "object",
	"properties": {
		"config-file": 		{"type": "string"},
		"debug-privilege":	{"type": "boolean"},
		"poll": {
			"type": "object",
			"properties": {
				"interval":			{"$ref": "#/definitions/duration"},
				"max-cycles":		{"type": "integer", "minimum": 0},
				"attach-timeout":	{"$ref": "#/definitions/duration"}
			},
			"additionalProperties": false
		},
		"filter": {
			"type": "object",
			"properties": {
				"processes":			{"type": ["array", "null"], "items": {"type": "string", "minLength": 1}},
				"pids":					{"$ref": "#/definitions/pids"},
				"hook-types":			{"type": ["array", "null"], "items": {"type": "string", "pattern": "^([Ww][Hh]_)?[A-Za-z_]+$"}},
				"exclude-processes":	{"type": ["array", "null"], "items": {"type": "string", "minLength": 1}},
				"exclude-pids":			{"$ref": "#/definitions/pids"}
			},
			"additionalProperties": false
		},
		"output": {
			"type": "object",
			"properties": {
				"console": {
					"type": "object",
					"properties": {
						"enabled":	{"type": "boolean"},
						"format":	{"type": "string", "enum": [{{ range $i, $f := .Formats }}{{ if $i }}, {{ end }}"{{ $f }}"{{ end }}]},
						"template":	{"type": "string"}
					},
					"additionalProperties": false
				},
				"amqp": {
					"type": "object",
					"properties": {
						"enabled":					{"type": "boolean"},
						"url":						{"type": "string", "pattern": "^amqps?://"},
						"timeout":					{"$ref": "#/definitions/duration"},
						"exchange":					{"type": "string", "minLength": 1},
						"exchange-type":			{"type": "string", "enum": ["direct", "topic", "fanout", "headers", "x-consistent-hash"]},
						"routing-key":				{"type": "string"},
						"vhost":					{"type": "string"},
						"delivery-mode":			{"type": "string", "enum": ["transient", "persistent"]},
						"durable":					{"type": "boolean"},
						"passive":					{"type": "boolean"},
						"username":					{"type": "string"},
						"password":					{"type": "string"},
						"headers":					{"type": ["object", "null"], "additionalProperties": {"type": "string"}},
						"tls-ca":					{"type": "string"},
						"tls-cert":					{"type": "string"},
						"tls-key":					{"type": "string"},
						"tls-insecure-skip-verify":	{"type": "boolean"}
					},
					"if": {"properties": {"enabled": {"const": true}}},
					"then": {"required": ["url", "exchange"]},
					"additionalProperties": false
				},
				"http": {
					"type": "object",
					"properties": {
						"enabled":					{"type": "boolean"},
						"endpoints":				{"type": ["array", "null"], "items": {"type": "string", "pattern": "^https?://"}},
						"timeout":					{"$ref": "#/definitions/duration"},
						"method":					{"type": "string", "enum": ["", "POST", "PUT", "PATCH", "post", "put", "patch"]},
						"enable-gzip":				{"type": "boolean"},
						"proxy-url":				{"type": "string"},
						"username":					{"type": "string"},
						"password":					{"type": "string"},
						"headers":					{"type": ["object", "null"], "additionalProperties": {"type": "string"}},
						"tls-ca":					{"type": "string"},
						"tls-cert":					{"type": "string"},
						"tls-key":					{"type": "string"},
						"tls-insecure-skip-verify":	{"type": "boolean"}
					},
					"if": {"properties": {"enabled": {"const": true}}},
					"then": {"required": ["endpoints"], "properties": {"endpoints": {"type": "array", "minItems": 1}}},
					"additionalProperties": false
				},
				"elasticsearch": {
					"type": "object",
					"properties": {
						"enabled":					{"type": "boolean"},
						"servers":					{"type": ["array", "null"], "items": {"type": "string", "pattern": "^https?://"}},
						"timeout":					{"$ref": "#/definitions/duration"},
						"flush-period":				{"$ref": "#/definitions/duration"},
						"bulk-workers":				{"type": "integer", "minimum": 1},
						"healthcheck":				{"type": "boolean"},
						"healthcheck-interval":		{"$ref": "#/definitions/duration"},
						"healthcheck-timeout":		{"$ref": "#/definitions/duration"},
						"username":					{"type": "string"},
						"password":					{"type": "string"},
						"sniff":					{"type": "boolean"},
						"trace-log":				{"type": "boolean"},
						"index-name":				{"type": "string"},
						"template-name":			{"type": "string"},
						"template-config":			{"type": "string"},
						"gzip-compression":			{"type": "boolean"},
						"tls-ca":					{"type": "string"},
						"tls-cert":					{"type": "string"},
						"tls-key":					{"type": "string"},
						"tls-insecure-skip-verify":	{"type": "boolean"}
					},
					"if": {"properties": {"enabled": {"const": true}}},
					"then": {"required": ["servers", "index-name"], "properties": {"servers": {"type": "array", "minItems": 1}, "index-name": {"minLength": 1}}},
					"additionalProperties": false
				},
				"null": {"type": ["object", "null"]}
			},
			"additionalProperties": false
		},
		"api": {
			"type": "object",
			"properties": {
				"transport": 	{"type": "string", "minLength": 3},
				"timeout":		{"$ref": "#/definitions/duration"},
				"enabled":		{"type": "boolean"}
			},
			"additionalProperties": false
		},
		"logging": {
			"type": "object",
			"properties": {
				"level": 		{"type": "string", "enum": ["debug", "info", "warn", "warning", "error", "DEBUG", "INFO", "WARN", "WARNING", "ERROR"]},
				"max-age":		{"type": "integer", "minimum": 0},
				"max-backups":	{"type": "integer", "minimum": 1},
				"max-size":		{"type": "integer", "minimum": 1},
				"formatter":	{"type": "string", "enum": ["json", "text"]},
				"path":			{"type": "string"},
				"log-stdout":	{"type": "boolean"}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}
`

type schemaConfig struct {
	Formats []string
}

func interpolateSchema() string {
	tmpl := template.Must(template.New("schema").Parse(schema))

	var b bytes.Buffer
	err := tmpl.Execute(&b, &schemaConfig{Formats: console.Formats()})
	if err != nil {
		return ""
	}

	return b.String()
}
