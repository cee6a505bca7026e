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

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/olivere/elastic/v7"
)

type index struct {
	config Config
	client *elastic.Client
}

// pattern returns the index name up to the first time specifier.
func (i index) pattern() string {
	if n := strings.Index(i.config.IndexName, "%"); n >= 0 {
		return i.config.IndexName[:n]
	}
	return i.config.IndexName
}

// templateBody returns the configured template or expands the built-in one.
func (i index) templateBody() (string, error) {
	if i.config.TemplateConfig != "" {
		return i.config.TemplateConfig, nil
	}
	var b bytes.Buffer
	tmpl := template.Must(template.New("template").Parse(indexTemplate))
	if err := tmpl.Execute(&b, templateInfo{IndexPattern: i.pattern() + "*"}); err != nil {
		return "", err
	}
	return b.String(), nil
}

// putTemplate installs the index template unless it already exists.
func (i index) putTemplate(ctx context.Context) error {
	if i.config.TemplateName == "" {
		return nil
	}
	body, err := i.templateBody()
	if err != nil {
		return err
	}

	exists, err := i.client.IndexTemplateExists(i.config.TemplateName).Do(ctx)
	if err != nil {
		return fmt.Errorf("unable to check the existence of the %q template: %v", i.config.TemplateName, err)
	}
	if exists {
		return nil
	}
	if _, err := i.client.IndexPutTemplate(i.config.TemplateName).BodyString(body).Do(ctx); err != nil {
		return fmt.Errorf("unable to create the %q index template: %v", i.config.TemplateName, err)
	}
	return nil
}

// name resolves the index for documents published at the given time.
func (i index) name(ts time.Time) string {
	if !strings.Contains(i.config.IndexName, "%") {
		return i.config.IndexName
	}
	ts = ts.UTC()
	return strings.NewReplacer(
		"%Y", ts.Format("2006"),
		"%y", ts.Format("06"),
		"%m", ts.Format("01"),
		"%d", ts.Format("02"),
		"%H", ts.Format("15")).Replace(i.config.IndexName)
}
