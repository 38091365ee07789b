package handler

import (
	"html/template"

	"github.com/oddbyte/opm-repo/internal/config"
	"github.com/oddbyte/opm-repo/internal/opm"
)

type indexPage struct {
	Site     config.Site
	Packages opm.Catalog
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>OPM Repository</title>
  <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-100">
  <div class="container mx-auto px-4 py-8">
    <header class="mb-8 text-center">
      <h1 class="text-3xl font-bold text-gray-800 mb-2">{{.Site.Title}}</h1>
      <p class="text-gray-600">{{.Site.Tagline}}</p>
      <p class="text-gray-600 text-sm">This package manager is completely rootless</p>
    </header>

    <div class="mb-8 bg-white rounded-lg shadow p-6">
      <h2 class="text-xl font-semibold mb-4 text-gray-800">Repository Information</h2>
      <div class="grid grid-cols-1 md:grid-cols-2 gap-4">
        <div>
          <p class="mb-2"><span class="font-medium">Total Packages:</span> {{len .Packages}}</p>
          <p class="mb-2"><span class="font-medium">Repository API:</span> <a href="/packages.json" class="text-blue-600 hover:underline">packages.json</a></p>
        </div>
        <div>
          <p class="mb-2"><span class="font-medium">Install OPM:</span> <code class="bg-gray-100 px-2 py-1 rounded">{{.Site.InstallCommand}}</code></p>
        </div>
      </div>
    </div>

    <div class="bg-white rounded-lg shadow">
      <div class="px-6 py-4 border-b border-gray-200">
        <h2 class="text-xl font-semibold text-gray-800">Available Packages</h2>
      </div>
      <div class="overflow-x-auto">
        <table class="min-w-full divide-y divide-gray-200">
          <thead class="bg-gray-50">
            <tr>
              <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Name</th>
              <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Version</th>
              <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Description</th>
            </tr>
          </thead>
          <tbody class="bg-white divide-y divide-gray-200">
            {{- range .Packages}}
            <tr>
              <td class="px-6 py-4 whitespace-nowrap font-medium text-gray-900">{{.Name}}</td>
              <td class="px-6 py-4 whitespace-nowrap text-gray-500">{{.Version}}</td>
              <td class="px-6 py-4 text-gray-500">{{.Summary}}</td>
            </tr>
            {{- else}}
            <tr><td colspan="3" class="px-6 py-4 text-center text-gray-500">No packages available</td></tr>
            {{- end}}
          </tbody>
        </table>
      </div>
    </div>
  </div>
</body>
</html>
`))
