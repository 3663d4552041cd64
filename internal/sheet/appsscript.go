package sheet

// AppsScriptTemplate is the Apps Script web app code a user deploys on
// their sheet to enable two-way sync. doGet serves the rows as JSON;
// doPost handles add and soft-delete actions.
const AppsScriptTemplate = `function doGet(e) {
  var sheet = SpreadsheetApp.getActiveSpreadsheet().getSheets()[0];
  var data = sheet.getDataRange().getValues();
  var headers = data[0].map(function(h) { return h.toString().toLowerCase(); });
  var result = [];

  // Map rows to objects
  for (var i = 1; i < data.length; i++) {
    var row = {};
    for (var j = 0; j < headers.length; j++) {
      row[headers[j]] = data[i][j];
    }
    result.push(row);
  }

  return ContentService.createTextOutput(JSON.stringify(result))
    .setMimeType(ContentService.MimeType.JSON);
}

function doPost(e) {
  var sheet = SpreadsheetApp.getActiveSpreadsheet().getSheets()[0];
  // Parse text/plain to avoid CORS preflight issues
  var data = JSON.parse(e.postData.contents);
  var headers = sheet.getDataRange().getValues()[0].map(function(h) { return h.toString().toLowerCase(); });

  if (data.action === "add") {
    var newRow = [];
    // Ensure we map data to correct columns
    for (var i = 0; i < headers.length; i++) {
      var key = headers[i];
      if (key === 'id') {
        newRow.push(data.transaction.id || 'id-' + new Date().getTime());
      } else {
        var val = data.transaction[key] || data.transaction[key.toLowerCase()] || "";
        newRow.push(val);
      }
    }
    sheet.appendRow(newRow);
    return ContentService.createTextOutput(JSON.stringify({status: "success"}))
      .setMimeType(ContentService.MimeType.JSON);
  }

  if (data.action === "delete") {
    var id = data.id;
    var idColIndex = headers.indexOf("id");
    var statusColIndex = headers.indexOf("status");

    // If Status column doesn't exist, create it
    if (statusColIndex === -1) {
      sheet.getRange(1, headers.length + 1).setValue("Status");
      statusColIndex = headers.length;
    }

    if (idColIndex === -1) return ContentService.createTextOutput(JSON.stringify({status: "error", message: "No ID column"}));

    var values = sheet.getDataRange().getValues();
    // Find row and soft delete
    for (var i = 1; i < values.length; i++) {
      if (values[i][idColIndex] == id) {
        sheet.getRange(i + 1, statusColIndex + 1).setValue("Deleted");
        return ContentService.createTextOutput(JSON.stringify({status: "success"}))
          .setMimeType(ContentService.MimeType.JSON);
      }
    }
  }

  return ContentService.createTextOutput(JSON.stringify({status: "error", message: "Unknown action"}));
}`
